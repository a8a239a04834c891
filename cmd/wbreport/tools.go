package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wb-finances/wb-finances-mcp-server/internal/mcpclient"
)

// toolsFlags select the MCP server the tools commands talk to.
type toolsFlags struct {
	server string
	token  string
}

func (f *toolsFlags) client() *mcpclient.Client {
	token := f.token
	if token == "" {
		token = os.Getenv("MCP_HTTP_TOKEN")
	}
	return mcpclient.New(f.server, mcpclient.WithToken(token))
}

func toolsCmd() *cobra.Command {
	f := &toolsFlags{}
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and call tools of a running MCP HTTP server",
	}
	cmd.PersistentFlags().StringVar(&f.server, "server", "http://localhost:3333", "MCP HTTP server URL")
	cmd.PersistentFlags().StringVar(&f.token, "token", "", "Bearer token (default MCP_HTTP_TOKEN)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the advertised tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := f.client().ListTools(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", t.Name, firstLine(t.Description))
			}
			return nil
		},
	})

	var rawArgs string
	call := &cobra.Command{
		Use:   "call <name>",
		Short: "Call a tool and print its text output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(rawArgs)) {
				return fmt.Errorf("--args must be a JSON object")
			}
			res, err := f.client().CallTool(cmd.Context(), args[0], json.RawMessage(rawArgs))
			if err != nil {
				return err
			}
			for _, part := range res.Content {
				fmt.Fprintln(cmd.OutOrStdout(), part.Text)
			}
			return nil
		},
	}
	call.Flags().StringVar(&rawArgs, "args", "{}", "Tool arguments as a JSON object")
	cmd.AddCommand(call)

	return cmd
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
