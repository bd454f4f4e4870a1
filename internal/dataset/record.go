// SPDX-License-Identifier: MIT

// Package dataset defines the sales record model and CSV ingestion.
package dataset

import (
	"fmt"
	"time"
)

// Record is a single sales order line from the Supermart dataset.
type Record struct {
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"subCategory"`
	City         string    `json:"city"`
	OrderDate    time.Time `json:"orderDate"`
	Region       string    `json:"region"`
	State        string    `json:"state"`
	Sales        float64   `json:"sales"`
	Discount     float64   `json:"discount"`
	Profit       float64   `json:"profit"`
}

// Year returns the calendar year of the order.
func (r Record) Year() int { return r.OrderDate.Year() }

// Month returns the calendar month of the order.
func (r Record) Month() time.Month { return r.OrderDate.Month() }

// MonthKey returns the order month as a sortable "YYYY-MM" key.
func (r Record) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", r.OrderDate.Year(), int(r.OrderDate.Month()))
}

// Margin returns the profit margin in percent, 0 when sales are zero.
func (r Record) Margin() float64 {
	if r.Sales == 0 {
		return 0
	}
	return r.Profit / r.Sales * 100
}
