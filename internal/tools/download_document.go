package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

type downloadDocumentArgs struct {
	wb.DocumentRef
	OutputPath string `json:"output_path,omitempty"`
}

type savedDocument struct {
	FileName  string `json:"fileName"`
	Extension string `json:"extension"`
	FilePath  string `json:"filePath"`
}

// downloadDocumentTool fetches one document, optionally saving it on the server host.
type downloadDocumentTool struct {
	env *Env
}

// DownloadDocument constructs the downloadDocument tool.
func DownloadDocument(env *Env) *downloadDocumentTool {
	return &downloadDocumentTool{env: env}
}

func (t *downloadDocumentTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "downloadDocument",
		Description: "Download one seller document. Returns the base64 payload, or the saved file path when output_path is set. " +
			"Limit: 1 request per 10 seconds.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"serviceName": {Type: "string", Description: "Unique document id"},
				"extension":   {Type: "string", Description: "Document format, e.g. zip, pdf, xlsx"},
				"output_path": {Type: "string", Description: "Save the decoded document to this path instead of returning it"},
			},
			Required: []string{"serviceName", "extension"},
		},
	}
}

func (t *downloadDocumentTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args downloadDocumentArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "downloadDocument", func(ctx context.Context, credential string) (any, error) {
		doc, err := t.env.Documents.DownloadDocument(ctx, args.DocumentRef, credential)
		if err != nil {
			return nil, err
		}
		if args.OutputPath == "" {
			return doc, nil
		}
		path, err := doc.Data.Save(args.OutputPath)
		if err != nil {
			return nil, err
		}
		return savedDocument{FileName: doc.Data.FileName, Extension: doc.Data.Extension, FilePath: path}, nil
	})
}
