package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes switchboard to AI agents as MCP tools (run_turn, get_session,
list_sessions, get_graph) and resources (switchboard://graph).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to stderr.
- sse: Uses Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, cfg, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		transport, _ := cmd.Flags().GetString("transport")
		srv := mcp.NewServer(stack.Engine, switchboard.Version, mcp.WithLogger(stack.Logger))

		switch transport {
		case "stdio":
			stack.Logger.Info("Starting Switchboard MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			addr := cfg.HTTP.Addr
			if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
				addr = flagAddr
			}
			baseURL, _ := cmd.Flags().GetString("base-url")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
				return err
			}
			stack.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Listen address for SSE (overrides http.addr)")
	mcpCmd.Flags().String("base-url", "", "Public base URL advertised to SSE clients")
}
