package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/adapters/driving/mcp"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and ask to MCP clients",
	Long: `Exposes the index to assistants over the Model Context Protocol.

Tools:
  search   top-k passages for a query, with title and score
  ask      a grounded answer plus the passages it used

Resource:
  upfund://index   number of indexed passages

Stdio is the default transport, so the command can be launched by a client:
  {"mcpServers": {"upfund": {"command": "upfund", "args": ["mcp", "serve"]}}}

With --port the server speaks streamable HTTP instead.`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func mcpPorts(engine driving.Engine) *mcp.Ports {
	return &mcp.Ports{Search: engine, Answer: engine, Stats: engine}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	server, err := mcp.NewServer(mcpPorts(engine))
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		// stdout carries the protocol; nothing else may be written there.
		return server.Run(ctx)
	}

	addr := fmt.Sprintf(":%d", mcpPort)
	cmd.PrintErrf("MCP server listening on http://localhost%s/\n", addr)
	return server.RunHTTP(ctx, addr)
}
