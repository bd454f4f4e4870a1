// SPDX-License-Identifier: MIT

package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/supermart/salesd/internal/dataset"
)

// ComputeOverview returns the headline figures for the filtered dataset:
// total sales, total profit, margin and distinct order count.
func ComputeOverview(records []dataset.Record, f Filter) Overview {
	c := f.compile()
	orders := make(map[string]bool)
	var out Overview
	for _, r := range records {
		if !c.match(r) {
			continue
		}
		out.TotalSales += r.Sales
		out.TotalProfit += r.Profit
		out.RecordCount++
		orders[r.OrderID] = true
	}
	out.OrderCount = len(orders)
	out.ProfitMargin = margin(out.TotalProfit, out.TotalSales)
	return out
}

// MonthlyTrend returns summed sales and profit per calendar month, in
// chronological order.
func MonthlyTrend(records []dataset.Record, f Filter) []MonthPoint {
	c := f.compile()
	byMonth := make(map[string]*MonthPoint)
	for _, r := range records {
		if !c.match(r) {
			continue
		}
		key := r.MonthKey()
		p, ok := byMonth[key]
		if !ok {
			p = &MonthPoint{Month: key}
			byMonth[key] = p
		}
		p.Sales += r.Sales
		p.Profit += r.Profit
	}

	out := make([]MonthPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	// "YYYY-MM" keys sort chronologically as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Regions returns per-region totals plus the region/year breakdown.
func Regions(records []dataset.Record, f Filter) RegionReport {
	c := f.compile()

	type acc struct{ sales, profit float64 }
	byRegion := make(map[string]*acc)
	type ryKey struct {
		region string
		year   int
	}
	byRegionYear := make(map[ryKey]*acc)

	for _, r := range records {
		if !c.match(r) {
			continue
		}
		a, ok := byRegion[r.Region]
		if !ok {
			a = &acc{}
			byRegion[r.Region] = a
		}
		a.sales += r.Sales
		a.profit += r.Profit

		k := ryKey{region: r.Region, year: r.Year()}
		y, ok := byRegionYear[k]
		if !ok {
			y = &acc{}
			byRegionYear[k] = y
		}
		y.sales += r.Sales
		y.profit += r.Profit
	}

	report := RegionReport{}
	for region, a := range byRegion {
		report.Regions = append(report.Regions, RegionStat{
			Region: region,
			Sales:  a.sales,
			Profit: a.profit,
			Margin: margin(a.profit, a.sales),
		})
	}
	sort.Slice(report.Regions, func(i, j int) bool {
		return report.Regions[i].Region < report.Regions[j].Region
	})

	for k, a := range byRegionYear {
		report.ByYear = append(report.ByYear, RegionYearStat{
			Region: k.region,
			Year:   k.year,
			Sales:  a.sales,
			Profit: a.profit,
			Margin: margin(a.profit, a.sales),
		})
	}
	sort.Slice(report.ByYear, func(i, j int) bool {
		if report.ByYear[i].Region != report.ByYear[j].Region {
			return report.ByYear[i].Region < report.ByYear[j].Region
		}
		return report.ByYear[i].Year < report.ByYear[j].Year
	})

	return report
}

// Categories returns per-category sales, profit and margin, sorted by name.
func Categories(records []dataset.Record, f Filter) []CategoryStat {
	c := f.compile()
	type acc struct{ sales, profit float64 }
	byCat := make(map[string]*acc)
	for _, r := range records {
		if !c.match(r) {
			continue
		}
		a, ok := byCat[r.Category]
		if !ok {
			a = &acc{}
			byCat[r.Category] = a
		}
		a.sales += r.Sales
		a.profit += r.Profit
	}

	out := make([]CategoryStat, 0, len(byCat))
	for cat, a := range byCat {
		out = append(out, CategoryStat{
			Category: cat,
			Sales:    a.sales,
			Profit:   a.profit,
			Margin:   margin(a.profit, a.sales),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// TopSubCategories ranks sub-categories by total sales, descending, and
// returns at most n entries. Ties break alphabetically for stable output.
func TopSubCategories(records []dataset.Record, f Filter, n int) []SubCategoryStat {
	c := f.compile()
	type key struct{ cat, sub string }
	bySub := make(map[key]float64)
	for _, r := range records {
		if !c.match(r) {
			continue
		}
		bySub[key{cat: r.Category, sub: r.SubCategory}] += r.Sales
	}

	out := make([]SubCategoryStat, 0, len(bySub))
	for k, sales := range bySub {
		out = append(out, SubCategoryStat{Category: k.cat, SubCategory: k.sub, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].SubCategory < out[j].SubCategory
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategoryTree returns the category → sub-category sales distribution with
// each leaf's share of its parent, categories sorted by sales descending.
func CategoryTree(records []dataset.Record, f Filter) []CategoryNode {
	c := f.compile()
	type catAcc struct {
		sales float64
		subs  map[string]float64
	}
	byCat := make(map[string]*catAcc)
	for _, r := range records {
		if !c.match(r) {
			continue
		}
		a, ok := byCat[r.Category]
		if !ok {
			a = &catAcc{subs: make(map[string]float64)}
			byCat[r.Category] = a
		}
		a.sales += r.Sales
		a.subs[r.SubCategory] += r.Sales
	}

	out := make([]CategoryNode, 0, len(byCat))
	for cat, a := range byCat {
		node := CategoryNode{Category: cat, Sales: a.sales}
		for sub, sales := range a.subs {
			share := 0.0
			if a.sales != 0 {
				share = sales / a.sales * 100
			}
			node.Children = append(node.Children, SubCategoryLeaf{
				SubCategory: sub,
				Sales:       sales,
				Share:       share,
			})
		}
		sort.Slice(node.Children, func(i, j int) bool {
			if node.Children[i].Sales != node.Children[j].Sales {
				return node.Children[i].Sales > node.Children[j].Sales
			}
			return node.Children[i].SubCategory < node.Children[j].SubCategory
		})
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// discountBands partition the discount range. The last band is open-ended.
var discountBands = []struct {
	label    string
	min, max float64
}{
	{"0-5%", 0, 0.05},
	{"5-15%", 0.05, 0.15},
	{"15-30%", 0.15, 0.30},
	{"30%+", 0.30, 1.01},
}

// DiscountImpact returns per-record (discount, sales) points and aggregates
// per discount band.
func DiscountImpact(records []dataset.Record, f Filter) DiscountReport {
	c := f.compile()
	report := DiscountReport{}

	bands := make([]DiscountBand, len(discountBands))
	for i, b := range discountBands {
		bands[i] = DiscountBand{Label: b.label, Min: b.min, Max: b.max}
	}

	for _, r := range records {
		if !c.match(r) {
			continue
		}
		report.Points = append(report.Points, DiscountPoint{
			Category: r.Category,
			Discount: r.Discount,
			Sales:    r.Sales,
		})
		for i := range bands {
			if r.Discount >= bands[i].Min && r.Discount < bands[i].Max {
				bands[i].RecordCount++
				bands[i].TotalSales += r.Sales
				bands[i].TotalProfit += r.Profit
				break
			}
		}
	}

	for i := range bands {
		if bands[i].RecordCount > 0 {
			bands[i].AvgSales = bands[i].TotalSales / float64(bands[i].RecordCount)
		}
	}
	report.Bands = bands
	return report
}

// CacheKey derives a stable cache key for an endpoint + filter combination.
// List values are quoted individually so element boundaries survive values
// that contain the separator.
func CacheKey(endpoint string, f Filter, extra ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d", endpoint, f.From.Unix(), f.To.Unix())
	for _, list := range [][]string{f.Categories, f.Regions} {
		b.WriteByte('|')
		for i, v := range list {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(v))
		}
	}
	for _, e := range extra {
		b.WriteByte('|')
		b.WriteString(e)
	}
	return b.String()
}
