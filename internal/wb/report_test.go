package wb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRow(rrdID, nmID int64, brand string) ReportRow {
	return ReportRow{
		RealizationReportID: 1,
		RrdID:               rrdID,
		NmID:                nmID,
		BrandName:           brand,
		Quantity:            1,
		RetailAmount:        100,
		PpvzSalesCommission: 10,
		PpvzVwNds:           2,
		Srid:                "srid",
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{StatisticsBaseURL: srv.URL, DocumentsBaseURL: srv.URL})
}

func TestFetchReportPageSendsQueryAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, reportPath, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "wb-finances-mcp/"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("dateFrom"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("dateTo"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		assert.Equal(t, "42", r.URL.Query().Get("rrdid"))
		_ = json.NewEncoder(w).Encode([]ReportRow{testRow(43, 7, "A"), testRow(44, 8, "")})
	})

	q := ReportQuery{DateFrom: "2024-01-01", DateTo: "2024-01-31"}.WithLimit(500).WithCursor(42)
	rows, err := client.FetchReportPage(context.Background(), q, "secret")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(43), rows[0].RrdID)
	assert.Equal(t, "A", rows[0].BrandName)
	assert.Equal(t, "", rows[1].BrandName)
}

func TestFetchReportPageOmitsOptionalParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasLimit := r.URL.Query()["limit"]
		_, hasCursor := r.URL.Query()["rrdid"]
		assert.False(t, hasLimit)
		assert.False(t, hasCursor)
		_, _ = w.Write([]byte(`[]`))
	})

	rows, err := client.FetchReportPage(context.Background(), ReportQuery{DateFrom: "a", DateTo: "b"}, "k")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchReportPageRejectsInvalidQuery(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	cases := map[string]ReportQuery{
		"missing dates": {},
		"limit zero":    ReportQuery{DateFrom: "a", DateTo: "b"}.WithLimit(0),
		"limit too big": ReportQuery{DateFrom: "a", DateTo: "b"}.WithLimit(MaxReportLimit + 1),
		"negative rrd":  ReportQuery{DateFrom: "a", DateTo: "b"}.WithCursor(-1),
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := client.FetchReportPage(context.Background(), q, "k")
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchReportPageStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		contain string
	}{
		{"bad request list", 400, `{"errors":["bad dateFrom","bad dateTo"]}`, KindBadRequest, "bad dateFrom, bad dateTo"},
		{"bad request string", 400, `{"errors":"period too long"}`, KindBadRequest, "period too long"},
		{"bad request empty", 400, `{}`, KindBadRequest, "dateFrom and dateTo"},
		{"unauthorized", 401, `{"title":"unauthorized"}`, KindAuth, "API key"},
		{"rate limited", 429, ``, KindRateLimit, "1 request per minute"},
		{"server error", 503, `{"detail":"maintenance"}`, KindHTTP, "503: maintenance"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.FetchReportPage(context.Background(), ReportQuery{DateFrom: "a", DateTo: "b"}, "k")
			require.Error(t, err)

			var upstream *Error
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, tc.kind, upstream.Kind)
			assert.Equal(t, tc.status, upstream.Status)
			assert.Contains(t, err.Error(), tc.contain)
			assert.True(t, errors.Is(err, &Error{Kind: tc.kind}))
		})
	}
}

func TestFetchReportPageMissingFieldIsValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(testRow(1, 1, "A"))
		var obj map[string]any
		_ = json.Unmarshal(raw, &obj)
		delete(obj, "ppvz_sales_commission")
		delete(obj, "nm_id")
		_ = json.NewEncoder(w).Encode([]any{obj})
	})

	_, err := client.FetchReportPage(context.Background(), ReportQuery{DateFrom: "a", DateTo: "b"}, "k")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "[0].nm_id: required")
	assert.Contains(t, err.Error(), "[0].ppvz_sales_commission: required")
}

func TestFetchReportPageWrongTypeIsValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(testRow(1, 1, "A"))
		body := strings.Replace(string(raw), `"quantity":1`, `"quantity":"one"`, 1)
		_, _ = w.Write([]byte("[" + body + "]"))
	})

	_, err := client.FetchReportPage(context.Background(), ReportQuery{DateFrom: "a", DateTo: "b"}, "k")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "quantity")
}

func TestFetchReportPageNonArrayBody(t *testing.T) {
	for _, body := range []string{`null`, `{"rows":[]}`, `garbage`} {
		_, err := DecodeReportRows([]byte(body))
		require.Error(t, err, body)
		assert.Equal(t, KindValidation, KindOf(err), body)
	}
}

func TestFetchReportPageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient(Options{StatisticsBaseURL: base})
	_, err := client.FetchReportPage(context.Background(), ReportQuery{DateFrom: "a", DateTo: "b"}, "k")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRequiredReportFields(t *testing.T) {
	required := RequiredReportFields()
	assert.Contains(t, required, "rrd_id")
	assert.Contains(t, required, "ppvz_vw_nds")
	assert.NotContains(t, required, "storage_fee")
	assert.NotContains(t, required, "brand_name")
	assert.Len(t, ReportFields(), 76)
}
