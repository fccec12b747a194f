package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/classdex/internal/version"
)

func buildVersion() string {
	if version.Commit == "unknown" {
		return version.Version
	}
	return fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "classdex",
		Short: "Course section search over Redis",
		Long: "classdex loads a term's class sections into a Redis search index and serves " +
			"filtered search over REST and MCP. Configuration is read from config/<ENV>.yaml.",
		SilenceUsage: true,
	}
	root.Version = buildVersion()
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	root.AddCommand(
		serveCmd(&logLevel),
		mcpCmd(&logLevel),
		loadCmd(&logLevel),
		resolveCmd(&logLevel),
	)
	return root
}
