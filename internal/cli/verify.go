package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/svmerge/internal/merge"
	"github.com/lherron/svmerge/internal/render"
	"github.com/lherron/svmerge/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Audit player-to-account referential integrity on the target server",
	Long: `Verify runs the post-merge integrity query against the target database
outside of any merge run: players whose account_id matches no account row are
reported, with the sample capped at 20 rows. Orphans do not change the exit
status.`,
	RunE: runVerify,
}

var verifyOutput string

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "table", "Output format (table|json)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target, err := store.Open("target", cfg.Target())
	if err != nil {
		return err
	}
	defer target.Close()

	report, err := merge.NewVerifier(target.DB).FindOrphans()
	if err != nil {
		return err
	}

	switch render.Format(verifyOutput) {
	case render.FormatJSON:
		return render.NewRenderer(cmd.OutOrStdout(), render.FormatJSON).RenderJSON(report)
	case render.FormatTable:
		printIntegrityReport(cmd.OutOrStdout(), report)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", verifyOutput)
	}
}
