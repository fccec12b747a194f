package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpTransport "github.com/kailas-cloud/classdex/internal/transport/mcp"
)

// mcpCmd serves tools on stdio. Logs go to stderr so stdout stays protocol-only.
func mcpCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools on stdio",
		Long:  "Run the MCP server over stdin/stdout for local agents. Configure your client to launch `classdex mcp`.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, "mcp", *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcpTransport.NewServer(a.searchService(), a.limits(), a.cfg.ServedTerms(), buildVersion(), a.logger)
			return server.Run(ctx)
		},
	}
}
