package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wb-finances/wb-finances-mcp-server/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
