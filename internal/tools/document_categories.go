package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

type documentCategoriesArgs struct {
	Locale string `json:"locale,omitempty"`
}

// documentCategoriesTool lists the seller document categories.
type documentCategoriesTool struct {
	env *Env
}

// DocumentCategories constructs the getDocumentCategories tool.
func DocumentCategories(env *Env) *documentCategoriesTool {
	return &documentCategoriesTool{env: env}
}

func (t *documentCategoriesTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "getDocumentCategories",
		Description: "Document categories used to filter the seller document list.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"locale": {Type: "string", Description: "Language of the category titles", Enum: []string{"ru", "en", "zh"}, Default: "en"},
			},
		},
	}
}

func (t *documentCategoriesTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args documentCategoriesArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "getDocumentCategories", func(ctx context.Context, credential string) (any, error) {
		return t.env.Documents.DocumentCategories(ctx, args.Locale, credential)
	})
}
