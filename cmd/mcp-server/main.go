package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/app"
	"github.com/wb-finances/wb-finances-mcp-server/internal/config"
	"github.com/wb-finances/wb-finances-mcp-server/internal/logging"
	"github.com/wb-finances/wb-finances-mcp-server/internal/version"
)

func main() {
	_ = godotenv.Load()

	transport := flag.String("transport", "stdio", "MCP transport: stdio or http")
	httpAddr := flag.String("http", "", "MCP HTTP listen address (e.g., :3333); overrides MCP_HTTP_ADDR")
	apiKey := flag.String("apiKey", "", "Seller API key; overrides WB_FINANCES_OAUTH_TOKEN and the stored credential")
	configPath := flag.String("config", "", "Optional config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *transport {
	case "stdio":
		// stdout carries the protocol, so logs go to stderr
		logger := logging.NewWithLevel("mcp-server", cfg.LogLevel, os.Stderr)
		logger.WithField("version", version.Get().Version).Info("WB Finances MCP server running on stdio")
		if err := app.RunMCPStdio(ctx, cfg, *apiKey, os.Stdin, os.Stdout, logger); err != nil {
			logger.Fatalf("MCP server error: %v", err)
		}
	case "http":
		logger, cleanup, err := logging.New("mcp-server")
		if err != nil {
			log.Fatalf("logging: %v", err)
		}
		defer cleanup()
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.Logger.SetLevel(lvl)
		}

		log.Printf("mcp-server listening on %s", cfg.HTTPAddr)
		if err := app.RunMCPHTTP(ctx, cfg, *apiKey, logger); err != nil {
			logger.Errorf("MCP server error: %v", err)
			cleanup()
			log.Fatalf("MCP server error: %v", err)
		}
	default:
		log.Fatalf("unknown transport %q: use stdio or http", *transport)
	}
}
