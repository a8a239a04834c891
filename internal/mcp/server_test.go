package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

type echoTool struct {
	name string
}

func (t echoTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{Name: t.name, Description: "echoes its arguments"}
}

func (t echoTool) Invoke(_ context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	if string(raw) == `{"fail":true}` {
		return protocol.CallResult{}, &protocol.ResponseError{Code: 401, Message: "unauthorized"}
	}
	return protocol.TextResult(string(raw)), nil
}

func newTestServer() *Server {
	return NewServer(NewToolbox(echoTool{name: "zeta"}, echoTool{name: "alpha"}))
}

func TestHandleInitialize(t *testing.T) {
	resp, err := newTestServer().Handle(context.Background(), protocol.Request{JSONRPC: "2.0", ID: float64(1), Method: "initialize"})
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]any)
	info := result["serverInfo"].(map[string]string)
	assert.Equal(t, ServerName, info["name"])
	assert.NotEmpty(t, info["version"])
	assert.Equal(t, float64(1), resp.ID)
}

func TestHandleToolsListSorted(t *testing.T) {
	resp, err := newTestServer().Handle(context.Background(), protocol.Request{ID: "a", Method: "tools/list"})
	require.NoError(t, err)

	list := resp.Result.(protocol.ListResult)
	require.Len(t, list.Tools, 2)
	assert.Equal(t, "alpha", list.Tools[0].Name)
	assert.Equal(t, "zeta", list.Tools[1].Name)
}

func TestHandleToolsCall(t *testing.T) {
	tests := []struct {
		name     string
		params   string
		wantCode int
		wantText string
	}{
		{name: "success", params: `{"name":"alpha","arguments":{"x":1}}`, wantText: `{"x":1}`},
		{name: "tool error", params: `{"name":"alpha","arguments":{"fail":true}}`, wantCode: 401},
		{name: "unknown tool", params: `{"name":"nope"}`, wantCode: protocol.CodeMethodNotFound},
		{name: "missing name", params: `{}`, wantCode: protocol.CodeInvalidParams},
		{name: "bad params", params: `[1]`, wantCode: protocol.CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newTestServer().Handle(context.Background(), protocol.Request{ID: float64(7), Method: "tools/call", Params: json.RawMessage(tt.params)})
			require.NoError(t, err)
			if tt.wantCode != 0 {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			assert.Equal(t, tt.wantText, resp.Result.(protocol.CallResult).Content[0].Text)
		})
	}
}

func TestHandleRejectsBadEnvelope(t *testing.T) {
	srv := newTestServer()

	resp, _ := srv.Handle(context.Background(), protocol.Request{JSONRPC: "1.0", ID: float64(1), Method: "ping"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeInvalidRequest, resp.Error.Code)

	resp, _ = srv.Handle(context.Background(), protocol.Request{ID: float64(1), Method: "resources/list"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeMethodNotFound, resp.Error.Code)
}
