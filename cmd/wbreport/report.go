package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wb-finances/wb-finances-mcp-server/internal/report"
	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// periodFlags are the report period flags shared by the report commands.
type periodFlags struct {
	from  string
	to    string
	limit int
	full  bool
}

func (p *periodFlags) bind(cmd *cobra.Command, fullDefault bool) {
	cmd.Flags().StringVar(&p.from, "from", "", "Report start date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.to, "to", "", "Report end date")
	cmd.Flags().IntVar(&p.limit, "limit", 0, "Rows per page (1-100000, default 100000)")
	cmd.Flags().BoolVar(&p.full, "full", fullDefault, "Fetch every page, one per minute")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func (p *periodFlags) query() wb.ReportQuery {
	q := wb.ReportQuery{DateFrom: p.from, DateTo: p.to}
	if p.limit > 0 {
		q = q.WithLimit(p.limit)
	}
	return q
}

func fetchCmd(c *cli) *cobra.Command {
	var period periodFlags
	var out string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the full report for a period and save it as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, credential, err := c.session(cmd)
			if err != nil {
				return err
			}
			progress := func(loaded int, last int64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "loaded %d rows, last rrd_id %d\n", loaded, last)
			}

			var rows []wb.ReportRow
			if period.full {
				rows, err = svc.FetchFullReport(cmd.Context(), period.query(), credential, progress)
			} else {
				rows, err = svc.FetchReportPage(cmd.Context(), period.query(), credential)
			}
			if err != nil {
				return err
			}

			path, err := report.SaveCSV(out, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d rows to %s\n", len(rows), path)
			return nil
		},
	}

	period.bind(cmd, true)
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV file (default sales_report_<YYYY-MM-DD>.csv)")
	return cmd
}

func weeklyCmd(c *cli) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Render the weekly sales and commission report as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, credential, err := c.session(cmd)
			if err != nil {
				return err
			}
			rep, err := svc.WeeklyReport(cmd.Context(), period.query(), credential, period.full)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rep.Markdown)
			return nil
		},
	}

	period.bind(cmd, false)
	return cmd
}

func metricsCmd(c *cli) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print report metrics and commission totals as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, credential, err := c.session(cmd)
			if err != nil {
				return err
			}
			rows, err := svc.Rows(cmd.Context(), period.query(), credential, period.full)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Metrics    report.MetricsSummary   `json:"metrics"`
				Commission report.CommissionTotals `json:"commission"`
				Brands     []report.BrandAggregate `json:"brands"`
			}{report.Metrics(rows), report.Totals(rows), report.ByBrand(rows)})
		},
	}

	period.bind(cmd, false)
	return cmd
}
