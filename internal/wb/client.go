// Package wb talks to the seller financial reporting and documents APIs.
package wb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/version"
)

const (
	DefaultStatisticsBaseURL = "https://statistics-api.wildberries.ru"
	DefaultDocumentsBaseURL  = "https://documents-api.wildberries.ru"

	DefaultReportTimeout   = 60 * time.Second
	DefaultDocumentTimeout = 30 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	StatisticsBaseURL string
	DocumentsBaseURL  string
	ReportTimeout     time.Duration
	DocumentTimeout   time.Duration
	Logger            *logrus.Entry
}

// Client issues single, unretried calls against the upstream APIs.
type Client struct {
	statisticsBase string
	documentsBase  string
	reportHTTP     *http.Client
	documentsHTTP  *http.Client
	logger         *logrus.Entry
}

// NewClient builds a client with per-API timeouts.
func NewClient(opts Options) *Client {
	if opts.StatisticsBaseURL == "" {
		opts.StatisticsBaseURL = DefaultStatisticsBaseURL
	}
	if opts.DocumentsBaseURL == "" {
		opts.DocumentsBaseURL = DefaultDocumentsBaseURL
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.DocumentTimeout <= 0 {
		opts.DocumentTimeout = DefaultDocumentTimeout
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = logrus.NewEntry(l)
	}
	return &Client{
		statisticsBase: strings.TrimSuffix(opts.StatisticsBaseURL, "/"),
		documentsBase:  strings.TrimSuffix(opts.DocumentsBaseURL, "/"),
		reportHTTP:     &http.Client{Timeout: opts.ReportTimeout},
		documentsHTTP:  &http.Client{Timeout: opts.DocumentTimeout},
		logger:         opts.Logger,
	}
}

// errorHints customizes status mapping per endpoint.
type errorHints struct {
	rateLimit         string
	defaultBadRequest string
}

// do sends req and returns the body of a 2xx response. Non-2xx statuses become *Error.
func (c *Client) do(hc *http.Client, req *http.Request, credential string, hints errorHints) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", credential)
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.WithField("path", req.URL.Path).Warnf("upstream request failed: %v", err)
		return nil, NewTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransport(fmt.Errorf("read response: %w", err))
	}

	c.logger.WithFields(logrus.Fields{
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("upstream call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body, hints)
}

type upstreamErrorBody struct {
	Errors json.RawMessage `json:"errors"`
	Title  string          `json:"title"`
	Detail string          `json:"detail"`
}

func statusError(status int, body []byte, hints errorHints) *Error {
	var payload upstreamErrorBody
	_ = json.Unmarshal(body, &payload)

	switch status {
	case http.StatusBadRequest:
		if details := parseErrorsField(payload.Errors); len(details) > 0 {
			return NewBadRequest(details...)
		}
		if payload.Detail != "" {
			return NewBadRequest(payload.Detail)
		}
		return NewBadRequest(hints.defaultBadRequest)
	case http.StatusUnauthorized:
		return NewAuth()
	case http.StatusTooManyRequests:
		return NewRateLimit(hints.rateLimit)
	}

	msg := payload.Detail
	if msg == "" {
		msg = payload.Title
	}
	return NewHTTP(status, msg)
}

// parseErrorsField accepts both {"errors": "text"} and {"errors": ["a", "b"]}.
func parseErrorsField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func (c *Client) newGet(ctx context.Context, base, path string, params url.Values) (*http.Request, error) {
	u := base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}
