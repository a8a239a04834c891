package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// Service runs the fetch, aggregate and render pipeline for one invocation at a time.
// It keeps no state between calls; every full fetch gets its own limiter.
type Service struct {
	fetcher    PageFetcher
	newLimiter func() Limiter
	logger     *logrus.Entry
}

// NewService paces full fetches at one page per interval.
func NewService(fetcher PageFetcher, interval time.Duration, logger *logrus.Entry) *Service {
	return &Service{
		fetcher:    fetcher,
		newLimiter: func() Limiter { return NewIntervalLimiter(interval) },
		logger:     logger,
	}
}

// FetchReportPage returns a single page.
func (s *Service) FetchReportPage(ctx context.Context, q wb.ReportQuery, credential string) ([]wb.ReportRow, error) {
	return s.fetcher.FetchReportPage(ctx, q, credential)
}

// FetchFullReport walks every page of the date range.
func (s *Service) FetchFullReport(ctx context.Context, q wb.ReportQuery, credential string, onProgress ProgressFunc) ([]wb.ReportRow, error) {
	return NewPaginator(s.fetcher, s.newLimiter(), s.logger).FetchAll(ctx, q, credential, onProgress)
}

// Rows fetches either the full range or the page selected by q.
func (s *Service) Rows(ctx context.Context, q wb.ReportQuery, credential string, full bool) ([]wb.ReportRow, error) {
	if full {
		return s.FetchFullReport(ctx, q, credential, nil)
	}
	return s.FetchReportPage(ctx, q, credential)
}

// WeeklyReport fetches rows and renders the weekly document. A single-page
// fetch defaults to the maximum page size starting at row 0.
func (s *Service) WeeklyReport(ctx context.Context, q wb.ReportQuery, credential string, full bool) (WeeklyReport, error) {
	if q.Limit == nil {
		q = q.WithLimit(wb.MaxReportLimit)
	}
	if q.Cursor == nil {
		q = q.WithCursor(0)
	}
	rows, err := s.Rows(ctx, q, credential, full)
	if err != nil {
		return WeeklyReport{}, err
	}
	return RenderWeekly(q, rows), nil
}
