// Package tools exposes the report and document operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

const missingCredentialMessage = "API key is required: set WB_FINANCES_OAUTH_TOKEN, pass --apiKey, or run wbreport login"

// DocumentAPI is the part of the upstream client the document tools need.
type DocumentAPI interface {
	DocumentCategories(ctx context.Context, locale, credential string) (wb.DocumentCategories, error)
	DocumentList(ctx context.Context, q wb.DocumentListQuery, credential string) (wb.DocumentList, error)
	DownloadDocument(ctx context.Context, ref wb.DocumentRef, credential string) (wb.DocumentDownload, error)
	DownloadDocuments(ctx context.Context, refs []wb.DocumentRef, credential string) (wb.DocumentDownload, error)
}

// Env carries the dependencies shared by every tool. Credential is asked once
// per call and passed through untouched.
type Env struct {
	Reports    *report.Service
	Documents  DocumentAPI
	Credential func() string
	Logger     *logrus.Entry
}

func (e *Env) logger() *logrus.Entry {
	if e.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Logger
}

// run resolves the credential, executes fn and encodes its result as JSON text.
func (e *Env) run(ctx context.Context, tool string, fn func(ctx context.Context, credential string) (any, error)) (protocol.CallResult, *protocol.ResponseError) {
	log := e.logger().WithFields(logrus.Fields{"tool": tool, "call_id": uuid.NewString()})

	var credential string
	if e.Credential != nil {
		credential = e.Credential()
	}
	if credential == "" {
		log.Warn("tool call without credential")
		return protocol.CallResult{}, &protocol.ResponseError{Code: protocol.CodeServerError, Message: missingCredentialMessage}
	}
	log.WithField("credential", maskToken(credential)).Debug("tool call started")

	start := time.Now()
	out, err := fn(ctx, credential)
	log = log.WithField("duration", time.Since(start).Round(time.Millisecond).String())
	if err != nil {
		log.WithField("kind", wb.KindOf(err)).Warnf("tool call failed: %v", err)
		return protocol.CallResult{}, toResponseError(err)
	}

	text, err := json.Marshal(out)
	if err != nil {
		log.Errorf("encode result: %v", err)
		return protocol.CallResult{}, &protocol.ResponseError{Code: protocol.CodeInternalError, Message: fmt.Sprintf("encode result: %v", err)}
	}
	log.Info("tool call completed")
	return protocol.TextResult(string(text)), nil
}

// decodeArgs unmarshals tool arguments; empty input leaves out untouched.
func decodeArgs(raw json.RawMessage, out any) *protocol.ResponseError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &protocol.ResponseError{Code: protocol.CodeInvalidParams, Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

// toResponseError maps failures onto JSON-RPC errors. Upstream HTTP failures
// keep their status as the code.
func toResponseError(err error) *protocol.ResponseError {
	var wbErr *wb.Error
	if errors.As(err, &wbErr) {
		code := wbErr.Status
		switch wbErr.Kind {
		case wb.KindValidation:
			code = protocol.CodeInvalidParams
		case wb.KindTransport:
			code = protocol.CodeInternalError
		}
		if code == 0 {
			code = protocol.CodeInternalError
		}
		data := map[string]any{"kind": wbErr.Kind}
		if len(wbErr.Details) > 0 {
			data["details"] = wbErr.Details
		}
		return &protocol.ResponseError{Code: code, Message: wbErr.Error(), Data: data}
	}

	switch {
	case errors.Is(err, report.ErrNoRows):
		return &protocol.ResponseError{Code: protocol.CodeServerError, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &protocol.ResponseError{Code: protocol.CodeInternalError, Message: "request cancelled: " + err.Error()}
	}
	return &protocol.ResponseError{Code: protocol.CodeInternalError, Message: err.Error()}
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

func floatPtr(v float64) *float64 { return &v }

// reportArgs are the arguments shared by every report tool.
type reportArgs struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Limit    *int   `json:"limit,omitempty"`
	RrdID    *int64 `json:"rrdid,omitempty"`
}

func (a reportArgs) query() wb.ReportQuery {
	return wb.ReportQuery{DateFrom: a.DateFrom, DateTo: a.DateTo, Limit: a.Limit, Cursor: a.RrdID}
}

// reportSchema describes reportArgs plus any extra properties.
func reportSchema(extra map[string]protocol.JSONSchema) *protocol.JSONSchema {
	props := map[string]protocol.JSONSchema{
		"dateFrom": {Type: "string", Description: "Report start date, RFC3339 (e.g. 2024-01-01 or 2024-01-01T00:00:00)"},
		"dateTo":   {Type: "string", Description: "Report end date (e.g. 2024-01-31)"},
		"limit": {
			Type:        "integer",
			Description: "Maximum rows per page (at most 100000)",
			Minimum:     floatPtr(1),
			Maximum:     floatPtr(wb.MaxReportLimit),
		},
		"rrdid": {
			Type:        "integer",
			Description: "Row id to continue after; start pagination at 0",
			Minimum:     floatPtr(0),
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return &protocol.JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   []string{"dateFrom", "dateTo"},
	}
}

const reportLimitNote = "\n\nData is available from 29 January 2024. Limit: 1 request per minute per seller account."
