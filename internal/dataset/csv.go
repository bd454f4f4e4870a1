// SPDX-License-Identifier: MIT

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrNoHeader is returned when the CSV input is empty.
var ErrNoHeader = errors.New("dataset: csv input has no header row")

// Supported order date layouts. The source dataset mixes several formats, so
// layouts are tried in order and the first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
}

// ParseOptions controls CSV parsing behaviour.
type ParseOptions struct {
	// Strict fails on the first malformed row instead of skipping it.
	Strict bool
}

// ParseResult carries the parsed records and skip accounting.
type ParseResult struct {
	Records []Record
	Skipped int
}

// columns maps normalized header names to record fields.
type columns struct {
	orderID, customer, category, subCategory int
	city, orderDate, region, state           int
	sales, discount, profit                  int
}

// ParseCSV reads sales records from r. Column order is free; headers are
// matched case- and whitespace-insensitively. A header-only input yields an
// empty dataset without error.
func ParseCSV(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("dataset: csv line %d: %w", line, err)
			}
			result.Skipped++
			continue
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("dataset: csv line %d: %w", line, err)
			}
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func mapColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	cols := columns{}
	required := []struct {
		name string
		dst  *int
	}{
		{"order id", &cols.orderID},
		{"customer name", &cols.customer},
		{"category", &cols.category},
		{"sub category", &cols.subCategory},
		{"city", &cols.city},
		{"order date", &cols.orderDate},
		{"region", &cols.region},
		{"state", &cols.state},
		{"sales", &cols.sales},
		{"discount", &cols.discount},
		{"profit", &cols.profit},
	}
	for _, req := range required {
		i, ok := index[req.name]
		if !ok {
			return columns{}, fmt.Errorf("dataset: missing column %q", req.name)
		}
		*req.dst = i
	}
	return cols, nil
}

// normalizeHeader folds case, hyphens and surrounding space so that
// "Sub-Category", "sub category" and " Sub Category " all match.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "-", " ")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

func parseRow(row []string, cols columns) (Record, error) {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		OrderID:      field(cols.orderID),
		CustomerName: field(cols.customer),
		Category:     field(cols.category),
		SubCategory:  field(cols.subCategory),
		City:         field(cols.city),
		Region:       field(cols.region),
		State:        field(cols.state),
	}

	if rec.OrderID == "" {
		return Record{}, errors.New("empty order id")
	}

	date, err := ParseOrderDate(field(cols.orderDate))
	if err != nil {
		return Record{}, err
	}
	rec.OrderDate = date

	if rec.Sales, err = parseFloat(field(cols.sales), "sales"); err != nil {
		return Record{}, err
	}
	if rec.Discount, err = parseFloat(field(cols.discount), "discount"); err != nil {
		return Record{}, err
	}
	if rec.Discount < 0 || rec.Discount > 1 {
		return Record{}, fmt.Errorf("discount %v out of range [0,1]", rec.Discount)
	}
	if rec.Profit, err = parseFloat(field(cols.profit), "profit"); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// ParseOrderDate parses an order date in any of the supported layouts.
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty order date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order date %q", s)
}

func parseFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty %s value", name)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, s)
	}
	return f, nil
}
