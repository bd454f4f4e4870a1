// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/supermart/salesd/internal/analytics"
)

const queryDateLayout = "2006-01-02"

// parseFilter builds an analytics filter from query parameters. Dates use
// YYYY-MM-DD; category and region accept repeated params, each one exact
// value, with commas inside a single param as a list shorthand.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	var f analytics.Filter

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(queryDateLayout, v)
		if err != nil {
			return f, fmt.Errorf("invalid 'from' date %q, expected YYYY-MM-DD", v)
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(queryDateLayout, v)
		if err != nil {
			return f, fmt.Errorf("invalid 'to' date %q, expected YYYY-MM-DD", v)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("'to' date %s is before 'from' date %s", q.Get("to"), q.Get("from"))
	}

	f.Categories = filterValues(q["category"])
	f.Regions = filterValues(q["region"])
	return f, nil
}

// filterValues builds the OR candidate list for one filter dimension. Every
// repeated query param counts verbatim, so values that contain commas
// ("Eggs, Meat & Fish") stay matchable. A comma-separated param additionally
// contributes its parts, as a shorthand for repeating the param.
func filterValues(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
		parts := strings.Split(v, ",")
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseIntParam returns the query parameter as an int, clamped to [1, max],
// or def when absent. Malformed values fall back to def.
func parseIntParam(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
