package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// reportItems is the payload of both report detail tools.
type reportItems struct {
	Items []wb.ReportRow `json:"items"`
}

// reportDetailTool returns one page of the realization report.
type reportDetailTool struct {
	env *Env
}

// ReportDetail constructs the getReportDetailByPeriod tool.
func ReportDetail(env *Env) *reportDetailTool {
	return &reportDetailTool{env: env}
}

func (t *reportDetailTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "getReportDetailByPeriod",
		Description: "Detailed lines of the weekly realization reports for a period, one page at a time. " +
			"Continue with rrdid set to the rrd_id of the last returned row." + reportLimitNote,
		InputSchema: reportSchema(nil),
	}
}

func (t *reportDetailTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args reportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "getReportDetailByPeriod", func(ctx context.Context, credential string) (any, error) {
		rows, err := t.env.Reports.FetchReportPage(ctx, args.query(), credential)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []wb.ReportRow{}
		}
		return reportItems{Items: rows}, nil
	})
}
