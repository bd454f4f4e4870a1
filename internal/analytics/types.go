// SPDX-License-Identifier: MIT

package analytics

// Overview summarizes the filtered dataset.
type Overview struct {
	TotalSales   float64 `json:"totalSales"`
	TotalProfit  float64 `json:"totalProfit"`
	ProfitMargin float64 `json:"profitMargin"` // percent; 0 when no sales
	OrderCount   int     `json:"orderCount"`   // distinct order IDs
	RecordCount  int     `json:"recordCount"`
}

// MonthPoint is one month of the sales/profit trend.
type MonthPoint struct {
	Month  string  `json:"month"` // "2017-03"
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
}

// RegionStat aggregates one region.
type RegionStat struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Margin float64 `json:"margin"`
}

// RegionYearStat aggregates one region for one calendar year.
type RegionYearStat struct {
	Region string  `json:"region"`
	Year   int     `json:"year"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Margin float64 `json:"margin"`
}

// RegionReport combines the per-region rollup with the region/year breakdown.
type RegionReport struct {
	Regions []RegionStat     `json:"regions"`
	ByYear  []RegionYearStat `json:"byYear"`
}

// CategoryStat aggregates one product category.
type CategoryStat struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

// SubCategoryStat aggregates one sub-category, tagged with its parent.
type SubCategoryStat struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory"`
	Sales       float64 `json:"sales"`
}

// CategoryNode is one branch of the category → sub-category distribution.
type CategoryNode struct {
	Category string            `json:"category"`
	Sales    float64           `json:"sales"`
	Children []SubCategoryLeaf `json:"children"`
}

// SubCategoryLeaf is a sub-category with its share of the parent category.
type SubCategoryLeaf struct {
	SubCategory string  `json:"subCategory"`
	Sales       float64 `json:"sales"`
	Share       float64 `json:"share"` // percent of parent category sales
}

// DiscountPoint is one (discount, sales) observation.
type DiscountPoint struct {
	Category string  `json:"category"`
	Discount float64 `json:"discount"`
	Sales    float64 `json:"sales"`
}

// DiscountBand aggregates records whose discount falls in [Min, Max).
type DiscountBand struct {
	Label       string  `json:"label"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	RecordCount int     `json:"recordCount"`
	TotalSales  float64 `json:"totalSales"`
	TotalProfit float64 `json:"totalProfit"`
	AvgSales    float64 `json:"avgSales"`
}

// DiscountReport combines scatter points with band aggregates.
type DiscountReport struct {
	Points []DiscountPoint `json:"points"`
	Bands  []DiscountBand  `json:"bands"`
}
