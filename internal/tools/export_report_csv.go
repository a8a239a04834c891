package tools

import (
	"context"
	"encoding/json"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
)

type exportArgs struct {
	reportArgs
	Full       bool   `json:"full,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

type exportResult struct {
	FilePath string                `json:"filePath"`
	Rows     int                   `json:"rows"`
	Metrics  report.MetricsSummary `json:"metrics"`
}

// exportReportCSVTool saves report rows to a CSV file on the server host.
type exportReportCSVTool struct {
	env *Env
}

// ExportReportCSV constructs the exportReportCSV tool.
func ExportReportCSV(env *Env) *exportReportCSVTool {
	return &exportReportCSVTool{env: env}
}

func (t *exportReportCSVTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "exportReportCSV",
		Description: "Fetch report rows for a period, save them as CSV on the server host and return the file path with metrics.",
		InputSchema: reportSchema(map[string]protocol.JSONSchema{
			"full":        {Type: "boolean", Description: "Fetch every page (one per minute) instead of a single page", Default: false},
			"output_path": {Type: "string", Description: "Target file; defaults to sales_report_<YYYY-MM-DD>.csv in the working directory"},
		}),
	}
}

func (t *exportReportCSVTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args exportArgs
	if errResp := decodeArgs(raw, &args); errResp != nil {
		return protocol.CallResult{}, errResp
	}
	return t.env.run(ctx, "exportReportCSV", func(ctx context.Context, credential string) (any, error) {
		rows, err := t.env.Reports.Rows(ctx, args.query(), credential, args.Full)
		if err != nil {
			return nil, err
		}
		path, err := report.SaveCSV(args.OutputPath, rows)
		if err != nil {
			return nil, err
		}
		return exportResult{FilePath: path, Rows: len(rows), Metrics: report.Metrics(rows)}, nil
	})
}
