// Package report fetches realization reports page by page and turns them into
// totals, per-brand breakdowns and rendered documents.
package report

import (
	"context"
	"iter"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// DefaultPageInterval keeps full report fetches under the upstream quota of one
// request per minute.
const DefaultPageInterval = 61 * time.Second

// PageFetcher returns one page of report rows.
type PageFetcher interface {
	FetchReportPage(ctx context.Context, q wb.ReportQuery, credential string) ([]wb.ReportRow, error)
}

// Limiter paces outbound page requests.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// LimiterFunc adapts a function to Limiter.
type LimiterFunc func(ctx context.Context) error

func (f LimiterFunc) Acquire(ctx context.Context) error { return f(ctx) }

// Unlimited never waits.
var Unlimited Limiter = LimiterFunc(func(ctx context.Context) error { return ctx.Err() })

type intervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter allows one acquisition per interval. The first one is immediate.
func NewIntervalLimiter(interval time.Duration) Limiter {
	if interval <= 0 {
		return Unlimited
	}
	return &intervalLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (l *intervalLimiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// ProgressFunc is told how many rows were loaded so far and the last row identifier seen.
type ProgressFunc func(loaded int, lastCursor int64)

// Paginator walks the report by row identifier until the upstream returns an empty page.
type Paginator struct {
	fetcher PageFetcher
	limiter Limiter
	logger  *logrus.Entry
}

// NewPaginator wires a page source and a pacing policy. A nil limiter means Unlimited.
func NewPaginator(fetcher PageFetcher, limiter Limiter, logger *logrus.Entry) *Paginator {
	if limiter == nil {
		limiter = Unlimited
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Paginator{fetcher: fetcher, limiter: limiter, logger: logger}
}

// Pages lazily yields non-empty pages in cursor order, starting at cursor 0
// regardless of q.Cursor. Iteration ends after the first empty page; an error
// is yielded once and ends iteration.
//
// There is no iteration cap: a source that never returns an empty page keeps
// the sequence going until ctx is cancelled.
func (p *Paginator) Pages(ctx context.Context, q wb.ReportQuery, credential string) iter.Seq2[[]wb.ReportRow, error] {
	return func(yield func([]wb.ReportRow, error) bool) {
		var cursor int64
		for {
			if err := p.limiter.Acquire(ctx); err != nil {
				yield(nil, err)
				return
			}
			page, err := p.fetcher.FetchReportPage(ctx, q.WithCursor(cursor), credential)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 {
				return
			}
			cursor = page[len(page)-1].RrdID
			if !yield(page, nil) {
				return
			}
		}
	}
}

// FetchAll accumulates every page. On any failure the rows loaded so far are
// dropped and only the error is returned.
func (p *Paginator) FetchAll(ctx context.Context, q wb.ReportQuery, credential string, onProgress ProgressFunc) ([]wb.ReportRow, error) {
	rows := []wb.ReportRow{}
	pages := 0
	for page, err := range p.Pages(ctx, q, credential) {
		if err != nil {
			p.logger.WithFields(logrus.Fields{"pages": pages, "rows": len(rows)}).Warnf("pagination aborted: %v", err)
			return nil, err
		}
		pages++
		rows = append(rows, page...)
		last := page[len(page)-1].RrdID
		p.logger.WithFields(logrus.Fields{"page": pages, "rows": len(rows), "rrd_id": last}).Info("report page loaded")
		if onProgress != nil {
			onProgress(len(rows), last)
		}
	}
	return rows, nil
}
