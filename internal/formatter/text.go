// SPDX-License-Identifier: MIT

// Package formatter renders analytics reports as compact text.
package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/supermart/salesd/internal/analytics"
)

// TextFormatter formats analytics reports as aligned plain text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// FormatOverview writes the dataset summary.
func (f *TextFormatter) FormatOverview(ov analytics.Overview) error {
	w := f.tab()
	fmt.Fprintf(w, "Total sales:\t%.2f\n", ov.TotalSales)
	fmt.Fprintf(w, "Total profit:\t%.2f\n", ov.TotalProfit)
	fmt.Fprintf(w, "Profit margin:\t%.2f%%\n", ov.ProfitMargin)
	fmt.Fprintf(w, "Orders:\t%d\n", ov.OrderCount)
	fmt.Fprintf(w, "Records:\t%d\n", ov.RecordCount)
	return w.Flush()
}

// FormatMonthly writes the month-by-month sales and profit trend.
func (f *TextFormatter) FormatMonthly(points []analytics.MonthPoint) error {
	w := f.tab()
	fmt.Fprintln(w, "MONTH\tSALES\tPROFIT")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", p.Month, p.Sales, p.Profit)
	}
	return w.Flush()
}

// FormatRegions writes the per-region rollup followed by the per-year breakdown.
func (f *TextFormatter) FormatRegions(report analytics.RegionReport) error {
	w := f.tab()
	fmt.Fprintln(w, "REGION\tSALES\tPROFIT\tMARGIN")
	for _, r := range report.Regions {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f%%\n", r.Region, r.Sales, r.Profit, r.Margin)
	}
	if len(report.ByYear) > 0 {
		fmt.Fprintln(w, "\nREGION\tYEAR\tSALES\tPROFIT\tMARGIN")
		for _, r := range report.ByYear {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f%%\n", r.Region, r.Year, r.Sales, r.Profit, r.Margin)
		}
	}
	return w.Flush()
}

// FormatCategories writes the per-category rollup.
func (f *TextFormatter) FormatCategories(stats []analytics.CategoryStat) error {
	w := f.tab()
	fmt.Fprintln(w, "CATEGORY\tSALES\tPROFIT\tMARGIN")
	for _, c := range stats {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f%%\n", c.Category, c.Sales, c.Profit, c.Margin)
	}
	return w.Flush()
}

// FormatTopSubCategories writes the sub-category leaderboard.
func (f *TextFormatter) FormatTopSubCategories(stats []analytics.SubCategoryStat) error {
	w := f.tab()
	fmt.Fprintln(w, "RANK\tSUB CATEGORY\tCATEGORY\tSALES")
	for i, s := range stats {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", i+1, s.SubCategory, s.Category, s.Sales)
	}
	return w.Flush()
}

// FormatDiscountBands writes the discount band aggregates.
func (f *TextFormatter) FormatDiscountBands(bands []analytics.DiscountBand) error {
	w := f.tab()
	fmt.Fprintln(w, "BAND\tRECORDS\tSALES\tPROFIT\tAVG SALE")
	for _, b := range bands {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\n", b.Label, b.RecordCount, b.TotalSales, b.TotalProfit, b.AvgSales)
	}
	return w.Flush()
}

func (f *TextFormatter) tab() *tabwriter.Writer {
	return tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
}
