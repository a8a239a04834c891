package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
)

// reportMetricsTool computes the headline numbers of one report page.
type reportMetricsTool struct {
	env *Env
}

// ReportMetrics constructs the calculateReportMetrics tool.
func ReportMetrics(env *Env) *reportMetricsTool {
	return &reportMetricsTool{env: env}
}

func (t *reportMetricsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "calculateReportMetrics",
		Description: "Main report metrics for a period: quantity, sales, payout, commission, penalties, storage fees, " +
			"unique articles and row count. Amounts are decimal strings.",
		InputSchema: reportSchema(nil),
	}
}

func (t *reportMetricsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args reportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "calculateReportMetrics", func(ctx context.Context, credential string) (any, error) {
		rows, err := t.env.Reports.FetchReportPage(ctx, args.query(), credential)
		if err != nil {
			return nil, err
		}
		return report.Metrics(rows), nil
	})
}
