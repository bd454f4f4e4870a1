// SPDX-License-Identifier: MIT

// Package analytics computes aggregate views over the sales dataset.
package analytics

import (
	"strings"
	"time"

	"github.com/supermart/salesd/internal/dataset"
)

// Filter narrows the record set for a query. Dimensions are AND-combined;
// values within a dimension are OR-combined. Zero values mean "no restriction".
type Filter struct {
	From       time.Time
	To         time.Time
	Categories []string
	Regions    []string
}

// IsZero reports whether the filter imposes no restriction.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Categories) == 0 && len(f.Regions) == 0
}

// compiled is a filter with pre-built lowercase lookup sets.
type compiled struct {
	from, to   time.Time
	categories map[string]bool
	regions    map[string]bool
}

func (f Filter) compile() compiled {
	return compiled{
		from:       f.From,
		to:         f.To,
		categories: toLowerSet(f.Categories),
		regions:    toLowerSet(f.Regions),
	}
}

func (c compiled) match(r dataset.Record) bool {
	if !c.from.IsZero() && r.OrderDate.Before(c.from) {
		return false
	}
	if !c.to.IsZero() && r.OrderDate.After(c.to) {
		return false
	}
	if c.categories != nil && !c.categories[strings.ToLower(r.Category)] {
		return false
	}
	if c.regions != nil && !c.regions[strings.ToLower(r.Region)] {
		return false
	}
	return true
}

// FilterRecords returns the records matching f. When f imposes no
// restriction the input slice is returned as-is.
func FilterRecords(records []dataset.Record, f Filter) []dataset.Record {
	if f.IsZero() {
		return records
	}
	c := f.compile()
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if c.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// toLowerSet converts a value list to a lowercase lookup set, nil when empty.
func toLowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}

// margin guards the profit margin computation against zero sales.
func margin(profit, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return profit / sales * 100
}
