// Package mcpclient issues JSON-RPC calls to a running MCP HTTP server.
package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

// DefaultTimeout covers a full paginated fetch behind a tool call.
const DefaultTimeout = 30 * time.Minute

// RPCError is a JSON-RPC error returned by the server.
type RPCError struct {
	Code    int
	Message string
	Data    any
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// Client talks to the MCP server over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	counter    uint64
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends a bearer token on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New builds a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	trimmed := baseURL
	if !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) nextID() any {
	return atomic.AddUint64(&c.counter, 1)
}

func (c *Client) do(ctx context.Context, method string, params any, out any) error {
	payload := protocol.Request{
		JSONRPC: "2.0",
		ID:      c.nextID(),
		Method:  method,
		Params:  mustRaw(params),
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call mcp server: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("mcp server returned status %d", httpResp.StatusCode)
	}

	var resp struct {
		Result json.RawMessage         `json:"result"`
		Error  *protocol.ResponseError `json:"error"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return &RPCError{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", map[string]any{}, nil)
}

// ListTools fetches the advertised tools from the MCP server.
func (c *Client) ListTools(ctx context.Context) ([]protocol.ToolDescriptor, error) {
	var result protocol.ListResult
	if err := c.do(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool and returns the structured result.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (protocol.CallResult, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	var result protocol.CallResult
	if err := c.do(ctx, "tools/call", protocol.CallParams{Name: name, Args: args}, &result); err != nil {
		return protocol.CallResult{}, err
	}
	return result, nil
}

func mustRaw(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage(`null`)
	}
	b, _ := json.Marshal(v)
	return json.RawMessage(b)
}
