package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// documentListTool lists seller documents for a period.
type documentListTool struct {
	env *Env
}

// DocumentList constructs the getDocumentList tool.
func DocumentList(env *Env) *documentListTool {
	return &documentListTool{env: env}
}

func (t *documentListTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "getDocumentList",
		Description: "Seller documents created in a period, optionally filtered by category or document id.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"locale":      {Type: "string", Description: "Language of document names", Default: "ru"},
				"beginTime":   {Type: "string", Description: "Period start, RFC3339"},
				"endTime":     {Type: "string", Description: "Period end, RFC3339"},
				"sort":        {Type: "string", Enum: []string{"date", "category"}, Default: "category"},
				"order":       {Type: "string", Enum: []string{"desc", "asc"}, Default: "desc"},
				"category":    {Type: "string", Description: "Category name from getDocumentCategories"},
				"serviceName": {Type: "string", Description: "Unique document id"},
			},
			Required: []string{"beginTime", "endTime"},
		},
	}
}

func (t *documentListTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var q wb.DocumentListQuery
	if errResp := decodeArgs(raw, &q); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "getDocumentList", func(ctx context.Context, credential string) (any, error) {
		return t.env.Documents.DocumentList(ctx, q, credential)
	})
}
