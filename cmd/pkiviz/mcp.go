package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/aretw0/pkiviz/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the PKI catalog and the guided flows as MCP tools and resources,
so agents can look up entities, walk flows and highlight commands.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mcpOverrides := map[string]any{}
			for _, name := range []string{"transport", "addr", "base-url"} {
				if cmd.Flags().Changed(name) {
					value, _ := cmd.Flags().GetString(name)
					key := name
					if name == "base-url" {
						key = "base_url"
					}
					mcpOverrides[key] = value
				}
			}
			overrides := map[string]any{}
			if len(mcpOverrides) > 0 {
				overrides["mcp"] = mcpOverrides
			}
			env, err := loadEnv(cmd, overrides)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(env.Catalog, mcp.WithLogger(env.Logger))
			cfg := env.Config.MCP

			switch cfg.Transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				env.Logger.Info("Starting pkiviz MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				baseURL := cfg.BaseURL
				if baseURL == "" {
					baseURL = "http://localhost" + cfg.Addr
				}
				ctx := cli.NewSignalContext(cmd.Context())
				defer ctx.Cancel()

				if err := srv.ServeSSE(ctx, cfg.Addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				env.Logger.Info("MCP server stopped gracefully")
				return nil
			}
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.Transport)
		},
	}
	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	cmd.Flags().String("base-url", "", "Public base URL of the SSE endpoint (default http://localhost<addr>)")
	return cmd
}
