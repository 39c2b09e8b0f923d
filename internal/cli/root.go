package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lherron/svmerge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "svmerge",
	Short: "Merge two game-server databases into one",
	Long: `svmerge appends one game server's MySQL database to another. Every
primary identifier from the source server is shifted by a configured offset so
the rows land without collision, and every referential link is rewritten to
the new identifiers, including player references embedded in the serialized
clan members JSON.

The merge runs under one transaction per server with interactive confirmation
before starting and before committing. Use --dry-run to compute and report
without writing anything.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default config.yaml, or SVMERGE_CONFIG)")
}

// configPath resolves the config file path from --config, SVMERGE_CONFIG, or
// the default.
func configPath(cmd *cobra.Command) string {
	if path := cmd.Flag("config").Value.String(); path != "" {
		return path
	}
	if path := os.Getenv("SVMERGE_CONFIG"); path != "" {
		return path
	}
	return config.DefaultPath
}
