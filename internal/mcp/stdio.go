package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

// RunStdio reads newline delimited JSON-RPC requests from in and writes
// responses to out until in is exhausted or ctx is done. Notifications get no
// response. Nothing else may write to out.
func RunStdio(ctx context.Context, server *Server, in io.Reader, out io.Writer, logger *logrus.Entry) error {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger.Info("MCP server reading from stdio")

	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// the stream cannot be resynchronised after a syntax error
			_ = enc.Encode(protocol.Response{JSONRPC: "2.0", Error: &protocol.ResponseError{Code: protocol.CodeParseError, Message: "invalid JSON"}})
			return fmt.Errorf("decode request: %w", err)
		}

		var req protocol.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			if err := enc.Encode(protocol.Response{JSONRPC: "2.0", Error: &protocol.ResponseError{Code: protocol.CodeInvalidRequest, Message: "invalid request"}}); err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			continue
		}

		resp, err := server.Handle(ctx, req)
		if err != nil {
			resp = WriteError(req.ID, protocol.CodeInternalError, "internal error", err)
		}
		if req.IsNotification() {
			logger.WithField("method", req.Method).Debug("notification")
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
}
