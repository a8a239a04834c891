package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

type weeklyReportArgs struct {
	reportArgs
	Full bool `json:"full,omitempty"`
}

// weeklyReportTool renders the weekly sales and commission document.
type weeklyReportTool struct {
	env *Env
}

// WeeklyReport constructs the generateWeeklyReport tool.
func WeeklyReport(env *Env) *weeklyReportTool {
	return &weeklyReportTool{env: env}
}

func (t *weeklyReportTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "generateWeeklyReport",
		Description: "Weekly sales and commission report in markdown: totals, a per-brand table and a per-brand quantity chart. " +
			"Uses one page of up to 100000 rows unless full is set.",
		InputSchema: reportSchema(map[string]protocol.JSONSchema{
			"full": {Type: "boolean", Description: "Fetch every page (one per minute) instead of a single page", Default: false},
		}),
	}
}

func (t *weeklyReportTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args weeklyReportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "generateWeeklyReport", func(ctx context.Context, credential string) (any, error) {
		return t.env.Reports.WeeklyReport(ctx, args.query(), credential, args.Full)
	})
}
