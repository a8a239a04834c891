// wbreport is a command line client for the seller financial reports.
//
// Usage:
//
//	wbreport login --api-key KEY          # store the API key
//	wbreport fetch --from D --to D        # full report to CSV
//	wbreport weekly --from D --to D       # markdown weekly report
//	wbreport metrics --from D --to D      # headline numbers as JSON
//	wbreport tools list                   # tools of a running MCP server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wb-finances/wb-finances-mcp-server/internal/app"
	"github.com/wb-finances/wb-finances-mcp-server/internal/config"
	"github.com/wb-finances/wb-finances-mcp-server/internal/logging"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	configPath string
	apiKey     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "wbreport",
		Short:        "Seller financial reports from the command line",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Optional config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&c.apiKey, "api-key", "", "Seller API key; overrides the environment and the stored credential")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level for diagnostics on stderr")

	rootCmd.AddCommand(loginCmd(c))
	rootCmd.AddCommand(logoutCmd(c))
	rootCmd.AddCommand(fetchCmd(c))
	rootCmd.AddCommand(weeklyCmd(c))
	rootCmd.AddCommand(metricsCmd(c))
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func (c *cli) load() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	return cfg, nil
}

func (c *cli) logger(cmd *cobra.Command, cfg *config.Config) *logrus.Entry {
	return logging.NewWithLevel("wbreport", cfg.LogLevel, cmd.ErrOrStderr())
}

// session resolves config, credential and the report pipeline for one command.
func (c *cli) session(cmd *cobra.Command) (*report.Service, string, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, "", err
	}
	logger := c.logger(cmd, cfg)
	credential := app.CredentialSource(c.apiKey, cfg, logger)()
	if credential == "" {
		return nil, "", fmt.Errorf("no API key: pass --api-key, set WB_FINANCES_OAUTH_TOKEN, or run wbreport login")
	}
	client := app.NewClient(cfg, logger)
	return app.NewService(cfg, client, logger), credential, nil
}
