// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supermart/salesd/internal/analytics"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/formatter"
)

var (
	csvPath    string
	fromDate   string
	toDate     string
	categories []string
	regions    []string
	strict     bool
	asJSON     bool
	topN       int
)

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Analyze a Supermart sales CSV from the command line",
	Long: `salesctl runs the salesd aggregations directly against a CSV file,
without a running server. All commands accept the same filter flags.`,
	SilenceUsage: true,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total sales, profit, margin and order count",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		ov := analytics.ComputeOverview(records, f)
		if asJSON {
			return printJSON(ov)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatOverview(ov)
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Monthly sales and profit trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		points := analytics.MonthlyTrend(records, f)
		if asJSON {
			return printJSON(points)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatMonthly(points)
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Sales, profit and margin by region and by region/year",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		report := analytics.Regions(records, f)
		if asJSON {
			return printJSON(report)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatRegions(report)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Sales, profit and margin by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		stats := analytics.Categories(records, f)
		if asJSON {
			return printJSON(stats)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatCategories(stats)
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Top sub-categories by sales",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		stats := analytics.TopSubCategories(records, f, topN)
		if asJSON {
			return printJSON(stats)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatTopSubCategories(stats)
	},
}

var discountsCmd = &cobra.Command{
	Use:   "discounts",
	Short: "Sales aggregated by discount band",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, f, err := load()
		if err != nil {
			return err
		}
		report := analytics.DiscountImpact(records, f)
		if asJSON {
			return printJSON(report)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatDiscountBands(report.Bands)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "path to the sales CSV file (required)")
	rootCmd.PersistentFlags().StringVar(&fromDate, "from", "", "start date filter (YYYY-MM-DD, inclusive)")
	rootCmd.PersistentFlags().StringVar(&toDate, "to", "", "end date filter (YYYY-MM-DD, inclusive)")
	rootCmd.PersistentFlags().StringArrayVar(&categories, "category", nil, "category filter, exact name (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&regions, "region", nil, "region filter, exact name (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail on malformed rows instead of skipping them")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output JSON instead of text")
	_ = rootCmd.MarkPersistentFlagRequired("csv")

	topCmd.Flags().IntVarP(&topN, "n", "n", 10, "number of sub-categories to show")

	rootCmd.AddCommand(summaryCmd, trendCmd, regionsCmd, categoriesCmd, topCmd, discountsCmd)
}

// load reads and parses the CSV and builds the filter from the shared flags.
func load() ([]dataset.Record, analytics.Filter, error) {
	var f analytics.Filter

	if fromDate != "" {
		t, err := time.Parse("2006-01-02", fromDate)
		if err != nil {
			return nil, f, fmt.Errorf("invalid --from date %q, expected YYYY-MM-DD", fromDate)
		}
		f.From = t
	}
	if toDate != "" {
		t, err := time.Parse("2006-01-02", toDate)
		if err != nil {
			return nil, f, fmt.Errorf("invalid --to date %q, expected YYYY-MM-DD", toDate)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, f, fmt.Errorf("--to date is before --from date")
	}
	f.Categories = trimValues(categories)
	f.Regions = trimValues(regions)

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, f, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close CSV file: %v\n", err)
		}
	}()

	result, err := dataset.ParseCSV(file, dataset.ParseOptions{Strict: strict})
	if err != nil {
		return nil, f, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed row(s)\n", result.Skipped)
	}
	return result.Records, f, nil
}

// trimValues drops empty flag values. Each --category or --region occurrence
// is one exact value; names containing commas need no escaping.
func trimValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
