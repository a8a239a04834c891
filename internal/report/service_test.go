package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

func TestServiceWeeklyReportSinglePageDefaults(t *testing.T) {
	fetcher := &stubFetcher{pages: [][]wb.ReportRow{{{RrdID: 1, BrandName: "Acme", Quantity: 1}}}}
	svc := NewService(fetcher, 0, nil)

	got, err := svc.WeeklyReport(context.Background(), wb.ReportQuery{DateFrom: "a", DateTo: "b"}, "key", false)
	require.NoError(t, err)

	require.Len(t, fetcher.cursors, 1)
	assert.Equal(t, int64(0), fetcher.cursors[0])
	require.NotNil(t, fetcher.limits[0])
	assert.Equal(t, wb.MaxReportLimit, *fetcher.limits[0])
	assert.Contains(t, got.Markdown, "| Acme | 1 |")
}

func TestServiceWeeklyReportFull(t *testing.T) {
	fetcher := &stubFetcher{pages: [][]wb.ReportRow{rows(1, 2), rows(3)}}
	svc := NewService(fetcher, 0, nil)

	got, err := svc.WeeklyReport(context.Background(), wb.ReportQuery{DateFrom: "a", DateTo: "b"}, "key", true)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 3}, fetcher.cursors)
	assert.Contains(t, got.Markdown, "| Unknown | 0 |")
}

func TestServiceWeeklyReportPropagatesErrors(t *testing.T) {
	fetcher := &stubFetcher{failAt: 1, err: wb.NewAuth()}
	svc := NewService(fetcher, 0, nil)

	_, err := svc.WeeklyReport(context.Background(), wb.ReportQuery{DateFrom: "a", DateTo: "b"}, "key", false)
	assert.Equal(t, wb.KindAuth, wb.KindOf(err))
}

func TestServiceRowsSelectsMode(t *testing.T) {
	single := &stubFetcher{pages: [][]wb.ReportRow{rows(1), rows(2)}}
	got, err := NewService(single, 0, nil).Rows(context.Background(), wb.ReportQuery{DateFrom: "a", DateTo: "b"}, "key", false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, single.cursors, 1)

	full := &stubFetcher{pages: [][]wb.ReportRow{rows(1), rows(2)}}
	got, err = NewService(full, 0, nil).Rows(context.Background(), wb.ReportQuery{DateFrom: "a", DateTo: "b"}, "key", true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, full.cursors, 3)
}
