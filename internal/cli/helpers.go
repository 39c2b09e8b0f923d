package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lherron/svmerge/internal/config"
	"github.com/lherron/svmerge/internal/merge"
	"github.com/lherron/svmerge/internal/render"
	"github.com/lherron/svmerge/internal/store"
)

// loadConfig loads and validates the run configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStores connects to the target and source servers. The caller owns both
// and must close them.
func openStores(cfg *config.Config) (target, source *store.Store, err error) {
	target, err = store.Open("target", cfg.Target())
	if err != nil {
		return nil, nil, err
	}
	source, err = store.Open("source", cfg.Source())
	if err != nil {
		target.Close()
		return nil, nil, err
	}
	return target, source, nil
}

// confirmYes asks a yes/no question on stderr and reads one line from stdin.
// Only a literal "yes" confirms.
func confirmYes(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s %s (yes/no): ", color.YellowString("⚠"), prompt)

	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(response)) == "yes"
}

// printStats renders the per-table row counts of both stores.
func printStats(out io.Writer, counts []merge.TableCount) error {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.Table,
			strconv.FormatInt(c.Target, 10),
			strconv.FormatInt(c.Source, 10),
			strconv.FormatInt(c.Total, 10),
		})
	}
	r := render.NewRenderer(out, render.FormatTable)
	return r.RenderTable([]string{"Table", "Target", "Source", "Total"}, rows)
}

// printIntegrityReport renders the orphan audit. Warnings are informational
// and never change the exit status.
func printIntegrityReport(out io.Writer, report *merge.IntegrityReport) {
	fmt.Fprintf(out, "\n%s\n", color.CyanString("=== VERIFY ==="))

	if report.Total == 0 {
		fmt.Fprintf(out, "%s every player has an account\n", color.GreenString("✓"))
		return
	}

	fmt.Fprintf(out, "%s %d players have no account!\n\n", color.YellowString("⚠"), report.Total)

	rows := make([][]string, 0, len(report.Sample))
	for _, o := range report.Sample {
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.Name,
			strconv.FormatInt(o.AccountID, 10),
		})
	}
	r := render.NewRenderer(out, render.FormatTable)
	r.RenderTable([]string{"ID", "Name", "Account_ID"}, rows)

	if int(report.Total) > len(report.Sample) {
		fmt.Fprintf(out, "\n... and %d more\n", report.Total-int64(len(report.Sample)))
	}

	fmt.Fprintf(out, "\n%s\n", color.RedString("These players will NOT be able to log in."))
	fmt.Fprintln(out, color.YellowString("Recommendation: delete them or create accounts for them after the merge."))
}
