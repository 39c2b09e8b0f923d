package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/svmerge/internal/merge"
	"github.com/lherron/svmerge/internal/render"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-table row counts on both servers",
	RunE:  runStats,
}

var statsOutput string

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table", "Output format (table|json)")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	counts, err := merge.CollectStats(target, source, cfg.ClanTable())
	if err != nil {
		return err
	}

	switch render.Format(statsOutput) {
	case render.FormatJSON:
		return render.NewRenderer(cmd.OutOrStdout(), render.FormatJSON).RenderJSON(counts)
	case render.FormatTable:
		return printStats(cmd.OutOrStdout(), counts)
	default:
		return fmt.Errorf("unknown output format %q", statsOutput)
	}
}
