package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
)

type totalCommissionResult struct {
	TotalCommission report.CommissionTotals `json:"totalCommission"`
}

// totalCommissionTool sums the marketplace commission and VAT for a period.
type totalCommissionTool struct {
	env *Env
}

// TotalCommission constructs the getTotalCommissionByPeriod tool.
func TotalCommission(env *Env) *totalCommissionTool {
	return &totalCommissionTool{env: env}
}

func (t *totalCommissionTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "getTotalCommissionByPeriod",
		Description: "Marketplace commission plus VAT for a period (one report page). Amounts are decimal strings.",
		InputSchema: reportSchema(nil),
	}
}

func (t *totalCommissionTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args reportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "getTotalCommissionByPeriod", func(ctx context.Context, credential string) (any, error) {
		rows, err := t.env.Reports.FetchReportPage(ctx, args.query(), credential)
		if err != nil {
			return nil, err
		}
		return totalCommissionResult{TotalCommission: report.Totals(rows)}, nil
	})
}
