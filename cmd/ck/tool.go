package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/mcptool"
	"github.com/jenningsloy318/context-keeper/settings"
)

func toolCmd() *cli.Command {
	return &cli.Command{
		Name:  "tool",
		Usage: "Invoke tools on a configured MCP server",
		Description: `Generic MCP proxy. The server is discovered from the host settings
files by name pattern; results and failures are both printed to stdout as
JSON envelopes, and the command always exits 0 so hook chains keep running.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "server",
				Usage:    "Server name pattern to match in mcpServers (case-insensitive)",
				Required: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the server's available tools",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withServer(ctx, cmd.String("server"), func(ctx context.Context, c *mcptool.Client) error {
						tools, err := c.ListTools(ctx)
						if err != nil {
							return printFailure("protocol_error", err)
						}
						return printSuccess(map[string]any{"server": c.ServerName, "tools": tools})
					})
				},
			},
			{
				Name:  "call",
				Usage: "Call one tool by name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Tool name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "args",
						Usage: "Tool arguments as a JSON object",
						Value: "{}",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var args map[string]any
					if err := json.Unmarshal([]byte(cmd.String("args")), &args); err != nil {
						return printFailure("invalid_arguments", fmt.Errorf("parse --args: %w", err))
					}
					return withServer(ctx, cmd.String("server"), func(ctx context.Context, c *mcptool.Client) error {
						result, err := c.CallTool(ctx, cmd.String("name"), args)
						if err != nil {
							return printFailure("tool_error", err)
						}
						return printSuccess(result)
					})
				},
			},
		},
	}
}

// withServer discovers and connects the named server, then hands the ready
// client to fn. Discovery and connection failures become error envelopes.
func withServer(ctx context.Context, pattern string, fn func(context.Context, *mcptool.Client) error) error {
	srv, ok := settings.Default(projectRoot("")).FindMCPServer(pattern)
	if !ok {
		return printFailure("server_not_found",
			fmt.Errorf("no MCP server matching %q in settings", pattern))
	}

	client := mcptool.New(srv, 0)
	if !client.Reachable() {
		return printFailure("unreachable",
			fmt.Errorf("server %q at %s is not reachable", srv.Name, srv.URL))
	}
	if err := client.Initialize(ctx); err != nil {
		return printFailure("protocol_error", err)
	}
	return fn(ctx, client)
}

// envelope is the stdout result format shared by all tool operations.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	Timestamp string `json:"timestamp"`
}

func printSuccess(data any) error {
	return printEnvelope(envelope{Success: true, Data: data})
}

func printFailure(errorType string, err error) error {
	return printEnvelope(envelope{Success: false, Error: err.Error(), ErrorType: errorType})
}

func printEnvelope(e envelope) error {
	e.Timestamp = time.Now().Format(time.RFC3339)
	out, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
