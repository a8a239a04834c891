package wb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	documentCategoriesPath  = "/api/v1/documents/categories"
	documentListPath        = "/api/v1/documents/list"
	documentDownloadPath    = "/api/v1/documents/download"
	documentDownloadAllPath = "/api/v1/documents/download/all"
)

// DocumentCategory is one entry of the categories endpoint.
type DocumentCategory struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// DocumentCategories is the categories endpoint payload.
type DocumentCategories struct {
	Data struct {
		Categories []DocumentCategory `json:"categories"`
	} `json:"data"`
}

// DocumentListQuery filters the seller document list.
type DocumentListQuery struct {
	Locale      string `json:"locale,omitempty"`
	BeginTime   string `json:"beginTime"`
	EndTime     string `json:"endTime"`
	Sort        string `json:"sort,omitempty"`
	Order       string `json:"order,omitempty"`
	Category    string `json:"category,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

// Validate checks the list query.
func (q DocumentListQuery) Validate() error {
	var failed []string
	if strings.TrimSpace(q.BeginTime) == "" {
		failed = append(failed, "beginTime: required")
	}
	if strings.TrimSpace(q.EndTime) == "" {
		failed = append(failed, "endTime: required")
	}
	switch q.Sort {
	case "", "date", "category":
	default:
		failed = append(failed, "sort: must be one of date, category")
	}
	switch q.Order {
	case "", "desc", "asc":
	default:
		failed = append(failed, "order: must be one of desc, asc")
	}
	if len(failed) > 0 {
		return NewValidation("invalid document list query", failed...)
	}
	return nil
}

// DocumentItem is one seller document.
type DocumentItem struct {
	ServiceName  string   `json:"serviceName"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Extensions   []string `json:"extensions"`
	CreationTime string   `json:"creationTime"`
	Viewed       bool     `json:"viewed"`
}

// DocumentList is the list endpoint payload.
type DocumentList struct {
	Data struct {
		Documents []DocumentItem `json:"documents"`
	} `json:"data"`
}

// DocumentRef identifies one document in a given format.
type DocumentRef struct {
	ServiceName string `json:"serviceName"`
	Extension   string `json:"extension"`
}

// Validate checks that both parts of the reference are set.
func (r DocumentRef) Validate() error {
	var failed []string
	if strings.TrimSpace(r.ServiceName) == "" {
		failed = append(failed, "serviceName: required")
	}
	if strings.TrimSpace(r.Extension) == "" {
		failed = append(failed, "extension: required")
	}
	if len(failed) > 0 {
		return NewValidation("invalid document reference", failed...)
	}
	return nil
}

// DocumentFile is a downloaded document, base64 encoded.
type DocumentFile struct {
	FileName  string `json:"fileName"`
	Extension string `json:"extension"`
	Document  string `json:"document"`
}

// DocumentDownload is the payload of both download endpoints.
type DocumentDownload struct {
	Data DocumentFile `json:"data"`
}

// Decode returns the raw document bytes.
func (f DocumentFile) Decode() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(f.Document)
	if err != nil {
		return nil, fmt.Errorf("decode base64 document: %w", err)
	}
	return raw, nil
}

// Save decodes the document into path, or into its own file name when path is empty.
// It returns the absolute path written.
func (f DocumentFile) Save(path string) (string, error) {
	if path == "" {
		path = f.FileName
	}
	if path == "" {
		return "", fmt.Errorf("no output path and no file name in document")
	}
	raw, err := f.Decode()
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

var documentHints = errorHints{
	rateLimit:         "1 request per 10 seconds",
	defaultBadRequest: "serviceName and extension are required",
}

// DocumentCategories lists document categories. Empty locale means "en".
func (c *Client) DocumentCategories(ctx context.Context, locale, credential string) (DocumentCategories, error) {
	var out DocumentCategories
	if locale == "" {
		locale = "en"
	}
	req, err := c.newGet(ctx, c.documentsBase, documentCategoriesPath, url.Values{"locale": {locale}})
	if err != nil {
		return out, err
	}
	body, err := c.do(c.documentsHTTP, req, credential, documentHints)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(body, &out)
}

// DocumentList lists seller documents.
func (c *Client) DocumentList(ctx context.Context, q DocumentListQuery, credential string) (DocumentList, error) {
	var out DocumentList
	if err := q.Validate(); err != nil {
		return out, err
	}
	params := url.Values{}
	locale := q.Locale
	if locale == "" {
		locale = "en"
	}
	params.Set("locale", locale)
	params.Set("beginTime", q.BeginTime)
	params.Set("endTime", q.EndTime)
	for k, v := range map[string]string{"sort": q.Sort, "order": q.Order, "category": q.Category, "serviceName": q.ServiceName} {
		if v != "" {
			params.Set(k, v)
		}
	}

	req, err := c.newGet(ctx, c.documentsBase, documentListPath, params)
	if err != nil {
		return out, err
	}
	body, err := c.do(c.documentsHTTP, req, credential, documentHints)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(body, &out)
}

// DownloadDocument fetches a single document.
func (c *Client) DownloadDocument(ctx context.Context, ref DocumentRef, credential string) (DocumentDownload, error) {
	var out DocumentDownload
	if err := ref.Validate(); err != nil {
		return out, err
	}
	req, err := c.newGet(ctx, c.documentsBase, documentDownloadPath, url.Values{
		"serviceName": {ref.ServiceName},
		"extension":   {ref.Extension},
	})
	if err != nil {
		return out, err
	}
	body, err := c.do(c.documentsHTTP, req, credential, documentHints)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(body, &out); err != nil {
		return out, err
	}
	return out, validateDownload(out)
}

// DownloadDocuments fetches several documents packed into one archive.
func (c *Client) DownloadDocuments(ctx context.Context, refs []DocumentRef, credential string) (DocumentDownload, error) {
	var out DocumentDownload
	if len(refs) == 0 {
		return out, NewValidation("invalid document references", "params: at least one document required")
	}
	for i, r := range refs {
		if err := r.Validate(); err != nil {
			return out, NewValidation("invalid document references", fmt.Sprintf("params[%d]: %v", i, err))
		}
	}

	payload, err := json.Marshal(map[string]any{"params": refs})
	if err != nil {
		return out, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.documentsBase+documentDownloadAllPath, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(c.documentsHTTP, req, credential, documentHints)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(body, &out)
}

func validateDownload(d DocumentDownload) error {
	var failed []string
	if d.Data.FileName == "" {
		failed = append(failed, "data.fileName: required")
	}
	if d.Data.Extension == "" {
		failed = append(failed, "data.extension: required")
	}
	if d.Data.Document == "" {
		failed = append(failed, "data.document: required")
	}
	if len(failed) > 0 {
		return NewValidation("invalid document response", failed...)
	}
	return nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return NewValidation("invalid response body", err.Error())
	}
	return nil
}
