package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

type downloadAllArgs struct {
	Params     []wb.DocumentRef `json:"params"`
	OutputPath string           `json:"output_path,omitempty"`
}

// downloadDocumentsAllTool fetches several documents as one archive.
type downloadDocumentsAllTool struct {
	env *Env
}

// DownloadDocumentsAll constructs the downloadDocumentsAll tool.
func DownloadDocumentsAll(env *Env) *downloadDocumentsAllTool {
	return &downloadDocumentsAllTool{env: env}
}

func (t *downloadDocumentsAllTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "downloadDocumentsAll",
		Description: "Download several seller documents packed into one archive.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"params": {
					Type:        "array",
					Description: "Documents to download",
					Items: &protocol.JSONSchema{
						Type: "object",
						Properties: map[string]protocol.JSONSchema{
							"serviceName": {Type: "string", Description: "Unique document id"},
							"extension":   {Type: "string", Description: "Document format"},
						},
						Required: []string{"serviceName", "extension"},
					},
				},
				"output_path": {Type: "string", Description: "Save the decoded archive to this path instead of returning it"},
			},
			Required: []string{"params"},
		},
	}
}

func (t *downloadDocumentsAllTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args downloadAllArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "downloadDocumentsAll", func(ctx context.Context, credential string) (any, error) {
		doc, err := t.env.Documents.DownloadDocuments(ctx, args.Params, credential)
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
