package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wb-finances/wb-finances-mcp-server/internal/logging"
	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

func row(rrdID, nmID int64, brand string, qty, retail, commission, vat float64) wb.ReportRow {
	return wb.ReportRow{
		RealizationReportID: 1,
		RrdID:               rrdID,
		NmID:                nmID,
		BrandName:           brand,
		Quantity:            qty,
		RetailAmount:        retail,
		PpvzSalesCommission: commission,
		PpvzVwNds:           vat,
		CurrencyName:        "RUB",
	}
}

func newEnv(t *testing.T, h http.HandlerFunc) *Env {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := wb.NewClient(wb.Options{StatisticsBaseURL: srv.URL, DocumentsBaseURL: srv.URL})
	return &Env{
		Reports:    report.NewService(client, 0, nil),
		Documents:  client,
		Credential: func() string { return "test-key" },
		Logger:     logging.Discard(),
	}
}

func callText(t *testing.T, tool interface {
	Invoke(context.Context, json.RawMessage) (protocol.CallResult, *protocol.ResponseError)
}, args string) string {
	t.Helper()
	res, errResp := tool.Invoke(context.Background(), json.RawMessage(args))
	require.Nil(t, errResp, "unexpected error: %+v", errResp)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res.Content[0].Text
}

func TestReportDetail(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("dateFrom"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]wb.ReportRow{row(1, 7, "A", 1, 100, 10, 2)})
	})

	text := callText(t, ReportDetail(env), `{"dateFrom":"2024-01-01","dateTo":"2024-01-07","limit":10}`)

	var got struct {
		Items []wb.ReportRow `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(7), got.Items[0].NmID)
}

func TestReportDetailEmptyPage(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	text := callText(t, ReportDetail(env), `{"dateFrom":"a","dateTo":"b"}`)
	assert.JSONEq(t, `{"items":[]}`, text)
}

func TestFullReportDetailPaginates(t *testing.T) {
	pages := map[string][]wb.ReportRow{
		"0": {row(1, 1, "A", 1, 1, 1, 0), row(2, 2, "A", 1, 1, 1, 0)},
		"2": {row(3, 3, "B", 1, 1, 1, 0)},
	}
	var calls int32
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		page := pages[r.URL.Query().Get("rrdid")]
		if page == nil {
			page = []wb.ReportRow{}
		}
		_ = json.NewEncoder(w).Encode(page)
	})

	text := callText(t, FullReportDetail(env), `{"dateFrom":"a","dateTo":"b","rrdid":99}`)

	var got struct {
		Items []wb.ReportRow `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Len(t, got.Items, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTotalCommission(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]wb.ReportRow{
			row(1, 1, "A", 1, 100, 10.1, 2.02),
			row(2, 2, "B", 1, 100, 20.2, 4.04),
		})
	})

	text := callText(t, TotalCommission(env), `{"dateFrom":"a","dateTo":"b"}`)
	assert.JSONEq(t, `{"totalCommission":{"totalCommission":"30.3","totalNds":"6.06","total":"36.36"}}`, text)
}

func TestReportMetrics(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]wb.ReportRow{
			row(1, 1, "A", 2, 100, 10, 2),
			row(2, 1, "A", 1, 50, 5, 1),
			row(3, 2, "B", 1, 10, 1, 0),
		})
	})

	text := callText(t, ReportMetrics(env), `{"dateFrom":"a","dateTo":"b"}`)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, float64(3), got["totalOrders"])
	assert.Equal(t, float64(2), got["uniqueArticles"])
	assert.Equal(t, "4", got["totalQuantity"])
	assert.Equal(t, "160", got["totalRetailAmount"])
}

func TestWeeklyReportDefaultsToOneFullPage(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, strconv.Itoa(wb.MaxReportLimit), r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("rrdid"))
		_ = json.NewEncoder(w).Encode([]wb.ReportRow{row(1, 1, "Acme", 3, 300, 30, 6)})
	})

	text := callText(t, WeeklyReport(env), `{"dateFrom":"2024-01-01","dateTo":"2024-01-07"}`)

	var got report.WeeklyReport
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Contains(t, got.Markdown, "Period: **2024-01-01** - **2024-01-07**")
	assert.Contains(t, got.Markdown, "| Acme | 3 | 300.00 | 30.00 |")
	assert.Contains(t, got.Markdown, "- Total payable: **36.00** RUB")
}

func TestExportReportCSV(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]wb.ReportRow{row(1, 1, "A", 1, 100, 10, 2)})
	})
	path := filepath.Join(t.TempDir(), "out", "report.csv")

	text := callText(t, ExportReportCSV(env), fmt.Sprintf(`{"dateFrom":"a","dateTo":"b","output_path":%q}`, path))

	var got exportResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, path, got.FilePath)
	assert.Equal(t, 1, got.Rows)
	assert.FileExists(t, path)
}

func TestExportReportCSVNoRows(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, errResp := ExportReportCSV(env).Invoke(context.Background(), json.RawMessage(`{"dateFrom":"a","dateTo":"b","output_path":"x.csv"}`))
	require.NotNil(t, errResp)
	assert.Equal(t, protocol.CodeServerError, errResp.Code)
	assert.Equal(t, report.ErrNoRows.Error(), errResp.Message)
}

func TestReportToolErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		args     string
		wantCode int
		wantKind wb.Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, args: `{"dateFrom":"a","dateTo":"b"}`, wantCode: 401, wantKind: wb.KindAuth},
		{name: "rate limited", status: http.StatusTooManyRequests, args: `{"dateFrom":"a","dateTo":"b"}`, wantCode: 429, wantKind: wb.KindRateLimit},
		{name: "bad request", status: http.StatusBadRequest, body: `{"errors":["bad dateFrom"]}`, args: `{"dateFrom":"a","dateTo":"b"}`, wantCode: 400, wantKind: wb.KindBadRequest},
		{name: "server error", status: http.StatusBadGateway, args: `{"dateFrom":"a","dateTo":"b"}`, wantCode: 502, wantKind: wb.KindHTTP},
		{name: "invalid query", status: http.StatusOK, args: `{"dateFrom":"a","dateTo":"b","limit":0}`, wantCode: protocol.CodeInvalidParams, wantKind: wb.KindValidation},
		{name: "malformed body", status: http.StatusOK, body: `{"not":"an array"}`, args: `{"dateFrom":"a","dateTo":"b"}`, wantCode: protocol.CodeInvalidParams, wantKind: wb.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, errResp := TotalCommission(env).Invoke(context.Background(), json.RawMessage(tt.args))
			require.NotNil(t, errResp)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.Equal(t, tt.wantKind, errResp.Data.(map[string]any)["kind"])
		})
	}
}

func TestMissingCredential(t *testing.T) {
	var calls int32
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	env.Credential = func() string { return "" }

	_, errResp := ReportDetail(env).Invoke(context.Background(), json.RawMessage(`{"dateFrom":"a","dateTo":"b"}`))
	require.NotNil(t, errResp)
	assert.Equal(t, protocol.CodeServerError, errResp.Code)
	assert.Contains(t, errResp.Message, "WB_FINANCES_OAUTH_TOKEN")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestInvalidArguments(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	_, errResp := ReportDetail(env).Invoke(context.Background(), json.RawMessage(`{"dateFrom":5}`))
	require.NotNil(t, errResp)
	assert.Equal(t, protocol.CodeInvalidParams, errResp.Code)
}

func TestDocumentCategories(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ru", r.URL.Query().Get("locale"))
		_, _ = w.Write([]byte(`{"data":{"categories":[{"name":"act","title":"Acts"}]}}`))
	})

	text := callText(t, DocumentCategories(env), `{"locale":"ru"}`)
	assert.JSONEq(t, `{"data":{"categories":[{"name":"act","title":"Acts"}]}}`, text)
}

func TestDocumentList(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "redeem", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"data":{"documents":[{"serviceName":"doc-1","name":"Act","category":"redeem","extensions":["pdf"],"creationTime":"2024-01-02","viewed":false}]}}`))
	})

	text := callText(t, DocumentList(env), `{"beginTime":"2024-01-01","endTime":"2024-01-31","category":"redeem"}`)

	var got wb.DocumentList
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	require.Len(t, got.Data.Documents, 1)
	assert.Equal(t, "doc-1", got.Data.Documents[0].ServiceName)
}

func TestDownloadDocumentSavesFile(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "doc-1", r.URL.Query().Get("serviceName"))
		_, _ = fmt.Fprintf(w, `{"data":{"fileName":"act.pdf","extension":"pdf","document":%q}}`, payload)
	})
	path := filepath.Join(t.TempDir(), "act.pdf")

	text := callText(t, DownloadDocument(env), fmt.Sprintf(`{"serviceName":"doc-1","extension":"pdf","output_path":%q}`, path))

	var got savedDocument
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, path, got.FilePath)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestDownloadDocumentReturnsPayload(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"fileName":"act.pdf","extension":"pdf","document":"QQ=="}}`))
	})

	text := callText(t, DownloadDocument(env), `{"serviceName":"doc-1","extension":"pdf"}`)
	assert.JSONEq(t, `{"data":{"fileName":"act.pdf","extension":"pdf","document":"QQ=="}}`, text)
}

func TestDownloadDocumentsAll(t *testing.T) {
	env := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Params []wb.DocumentRef `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Params, 2)
		_, _ = w.Write([]byte(`{"data":{"fileName":"docs.zip","extension":"zip","document":"UEs="}}`))
	})

	text := callText(t, DownloadDocumentsAll(env), `{"params":[{"serviceName":"a","extension":"pdf"},{"serviceName":"b","extension":"xlsx"}]}`)
	assert.Contains(t, text, `"fileName":"docs.zip"`)
}

func TestToResponseError(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "transport", err: wb.NewTransport(cause), code: protocol.CodeInternalError},
		{name: "validation", err: wb.NewValidation("bad", "x: required"), code: protocol.CodeInvalidParams},
		{name: "http", err: wb.NewHTTP(503, ""), code: 503},
		{name: "wrapped auth", err: fmt.Errorf("fetch: %w", wb.NewAuth()), code: 401},
		{name: "cancelled", err: context.Canceled, code: protocol.CodeInternalError},
		{name: "other", err: errors.New("disk full"), code: protocol.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, toResponseError(tt.err).Code)
		})
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd****wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}
