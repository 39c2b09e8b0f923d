package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lherron/svmerge/internal/merge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the source server's database into the target server",
	Long: `Merge reads every entity from the source database, shifts its ids by the
configured offset, rewrites all references, and appends the rows to the target
database. Two confirmation gates guard the run: one before any work starts and
one before the transactions commit.

There is no two-phase commit across the two servers. A fault landing between
the two commit (or rollback) calls can leave one server committed and the
other not; the error message says so when it happens.`,
	RunE: runMerge,
}

var mergeDryRun bool

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Compute mappings and report without writing or transacting")
}

func runMerge(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target, source, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer target.Close()
	defer source.Close()

	fmt.Fprintf(out, "\n%s\n", color.New(color.FgCyan, color.Bold).Sprint("=== MERGING TWO SERVERS ==="))
	fmt.Fprintf(out, "Target server: %d (%s)\n", cfg.Merge.TargetServer, target.Database())
	fmt.Fprintf(out, "ID offset:     %d\n", cfg.Merge.IDOffset)
	if mergeDryRun {
		fmt.Fprintf(out, "Mode:          %s\n\n", color.YellowString("DRY RUN (no commit)"))
	} else {
		fmt.Fprintf(out, "Mode:          %s\n\n", color.RedString("PRODUCTION (will commit)"))
	}

	counts, err := merge.CollectStats(target, source, cfg.ClanTable())
	if err != nil {
		return err
	}
	if err := printStats(out, counts); err != nil {
		return err
	}

	if !mergeDryRun && !confirmYes(cmd, "Proceed with the merge?") {
		fmt.Fprintln(out, "Merge cancelled.")
		return nil
	}

	run := merge.NewRun(target, source, merge.Options{
		IDOffset:   cfg.Merge.IDOffset,
		ClanTable:  cfg.ClanTable(),
		ClanColumn: cfg.ClanColumn(),
		DryRun:     mergeDryRun,
		Out:        out,
	})
	orch := merge.NewOrchestrator(run)

	if err := orch.Execute(); err != nil {
		return err
	}

	printIntegrityReport(out, orch.Report())

	if mergeDryRun {
		fmt.Fprintf(out, "\n%s\n", color.New(color.FgGreen, color.Bold).Sprint("✓ DRY RUN complete, nothing was written"))
	} else if confirmYes(cmd, "COMMIT the changes?") {
		if err := orch.Commit(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", color.New(color.FgGreen, color.Bold).Sprint("=== MERGE SUCCESSFUL ==="))
	} else {
		if err := orch.Rollback(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", color.YellowString("All changes rolled back"))
	}

	fmt.Fprintf(out, "Elapsed: %ds\n", int(time.Since(start).Seconds()))
	return nil
}
