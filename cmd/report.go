package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/attrition-dashboard/internal/chart"
	"github.com/sells-group/attrition-dashboard/internal/dashboard"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

var reportRows int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard to the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}
		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		return runReport(cmd.Context(), cmd.OutOrStdout(), dashboard.NewService(src), sel, reportRows)
	},
}

// runReport renders one page and prints it section by section in
// dashboard order. rows caps the table preview; 0 prints every row.
func runReport(ctx context.Context, w io.Writer, svc *dashboard.Service, sel dataset.Selection, rows int) error {
	p, err := svc.Page(ctx, sel)
	if err != nil {
		return eris.New(p.Error)
	}

	fmt.Fprintf(w, "%s\n%s\n", p.Title, strings.Repeat("=", len(p.Title)))
	fmt.Fprintf(w, "Department: %s\nEducation Field: %s\n\n", describe(sel.Departments), describe(sel.EducationFields))

	kpis := newTable(w, []string{"Metric", "Value"})
	for _, m := range p.Metrics {
		kpis.Append([]string{m.Label, m.Value})
	}
	kpis.Render()

	writeCounts(w, p.DepartmentChart)
	writeCounts(w, p.EducationChart)

	section(w, p.AttritionPie.Title)
	if p.AttritionPie.Empty() {
		fmt.Fprintln(w, chart.NoPieData)
	} else {
		pie := newTable(w, []string{p.AttritionPie.Column, "Count", "Share"})
		for _, s := range p.AttritionPie.Slices {
			pie.Append([]string{s.Label, strconv.Itoa(s.Count), chart.PctLabel(s.Pct)})
		}
		pie.Render()
	}

	section(w, p.Correlation.Title)
	if p.Correlation.Empty() {
		fmt.Fprintln(w, p.Correlation.Placeholder)
	} else {
		corr := newTable(w, append([]string{""}, p.Correlation.Columns...))
		for i, name := range p.Correlation.Columns {
			row := []string{name}
			for _, r := range p.Correlation.Matrix[i] {
				row = append(row, chart.Annotation(r))
			}
			corr.Append(row)
		}
		corr.Render()
	}

	section(w, p.Table.Title)
	preview := p.Table.Limit(rows)
	tbl := newTable(w, append([]string{""}, preview.Columns...))
	for _, r := range preview.Rows {
		tbl.Append(append([]string{strconv.Itoa(r.Index)}, r.Cells...))
	}
	tbl.Render()
	fmt.Fprintf(w, "%d of %d rows\n", len(preview.Rows), len(p.Table.Rows))
	return nil
}

func writeCounts(w io.Writer, c *chart.CountChart) {
	section(w, c.Title)
	if c.Empty() {
		fmt.Fprintln(w, "No rows.")
		return
	}

	header := []string{c.Dimension}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	t := newTable(w, header)
	for i, cat := range c.Categories {
		row := []string{cat}
		for _, s := range c.Series {
			row = append(row, strconv.Itoa(s.Counts[i]))
		}
		t.Append(row)
	}
	t.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	return t
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

func describe(values []string) string {
	if len(values) == 0 {
		return "all"
	}
	return strings.Join(values, ", ")
}

func init() {
	addFilterFlags(reportCmd)
	reportCmd.Flags().IntVar(&reportRows, "rows", 20, "table preview rows to print (0 for all)")
	rootCmd.AddCommand(reportCmd)
}
