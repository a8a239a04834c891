package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wb-finances/wb-finances-mcp-server/internal/credentials"
)

func loginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the API key given with --api-key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.apiKey == "" {
				return fmt.Errorf("--api-key is required")
			}
			cfg, err := c.load()
			if err != nil {
				return err
			}
			if err := credentials.Put(cfg.Home, c.apiKey); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
			return nil
		},
	}
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			if err := credentials.Delete(cfg.Home); err != nil {
				return fmt.Errorf("remove credential: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
			return nil
		},
	}
}
