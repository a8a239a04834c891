package tools

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

// fullReportDetailTool walks every page of the realization report.
type fullReportDetailTool struct {
	env *Env
}

// FullReportDetail constructs the getFullReportDetailByPeriod tool.
func FullReportDetail(env *Env) *fullReportDetailTool {
	return &fullReportDetailTool{env: env}
}

func (t *fullReportDetailTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "getFullReportDetailByPeriod",
		Description: "All detailed lines of the realization reports for a period. Pages are fetched one per minute " +
			"until the upstream returns an empty page, so large periods take several minutes. limit sets the page size; rrdid is ignored." +
			reportLimitNote,
		InputSchema: reportSchema(nil),
	}
}

func (t *fullReportDetailTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args reportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "getFullReportDetailByPeriod", func(ctx context.Context, credential string) (any, error) {
		log := t.env.logger().WithField("tool", "getFullReportDetailByPeriod")
		rows, err := t.env.Reports.FetchFullReport(ctx, args.query(), credential, func(loaded int, last int64) {
			log.WithFields(logrus.Fields{"loaded": loaded, "rrd_id": last}).Debug("progress")
		})
		if err != nil {
			return nil, err
		}
		return reportItems{Items: rows}, nil
	})
}
