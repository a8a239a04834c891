package app

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/config"
	"github.com/wb-finances/wb-finances-mcp-server/internal/credentials"
	"github.com/wb-finances/wb-finances-mcp-server/internal/mcp"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
	"github.com/wb-finances/wb-finances-mcp-server/internal/tools"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// NewClient builds the upstream client from cfg.
func NewClient(cfg *config.Config, logger *logrus.Entry) *wb.Client {
	return wb.NewClient(wb.Options{
		StatisticsBaseURL: cfg.StatisticsBaseURL,
		DocumentsBaseURL:  cfg.DocumentsBaseURL,
		ReportTimeout:     cfg.ReportTimeout,
		DocumentTimeout:   cfg.DocumentTimeout,
		Logger:            logger,
	})
}

// NewService builds the report pipeline paced at cfg.PageInterval.
func NewService(cfg *config.Config, client *wb.Client, logger *logrus.Entry) *report.Service {
	return report.NewService(client, cfg.PageInterval, logger)
}

// CredentialSource resolves the API key on every call: the explicit value,
// then cfg (flag or environment), then the stored credential file.
func CredentialSource(explicit string, cfg *config.Config, logger *logrus.Entry) func() string {
	return func() string {
		key := explicit
		if key == "" {
			key = cfg.APIKey
		}
		key, source, err := credentials.Resolve(key, cfg.Home)
		if err != nil {
			logger.Warnf("read stored credential: %v", err)
			return ""
		}
		logger.WithField("source", source).Debug("credential resolved")
		return key
	}
}

// NewToolbox builds the shared toolbox.
func NewToolbox(env *tools.Env) *mcp.Toolbox {
	return mcp.NewToolbox(
		// Report detail
		tools.ReportDetail(env),
		tools.FullReportDetail(env),

		// Aggregates and rendering
		tools.TotalCommission(env),
		tools.ReportMetrics(env),
		tools.WeeklyReport(env),
		tools.ExportReportCSV(env),

		// Documents
		tools.DocumentCategories(env),
		tools.DocumentList(env),
		tools.DownloadDocument(env),
		tools.DownloadDocumentsAll(env),
	)
}

// NewMCPServer constructs an MCP server from cfg. apiKey overrides every other credential source.
func NewMCPServer(cfg *config.Config, apiKey string, logger *logrus.Entry) *mcp.Server {
	client := NewClient(cfg, logger.WithField("layer", "wb"))
	env := &tools.Env{
		Reports:    NewService(cfg, client, logger.WithField("layer", "report")),
		Documents:  client,
		Credential: CredentialSource(apiKey, cfg, logger),
		Logger:     logger.WithField("layer", "tools"),
	}
	return mcp.NewServer(NewToolbox(env))
}

// RunMCPHTTP serves MCP over HTTP on cfg.HTTPAddr until ctx is done.
func RunMCPHTTP(ctx context.Context, cfg *config.Config, apiKey string, logger *logrus.Entry) error {
	return mcp.RunHTTP(ctx, NewMCPServer(cfg, apiKey, logger), cfg.HTTPAddr, mcp.HTTPOptions{
		Token:     cfg.HTTPToken,
		Allowlist: cfg.HTTPAllowlist,
		Logger:    logger.WithField("layer", "http"),
	})
}

// RunMCPStdio serves MCP over in and out until in closes or ctx is done.
func RunMCPStdio(ctx context.Context, cfg *config.Config, apiKey string, in io.Reader, out io.Writer, logger *logrus.Entry) error {
	return mcp.RunStdio(ctx, NewMCPServer(cfg, apiKey, logger), in, out, logger.WithField("layer", "stdio"))
}
