// Package calendarfill converts sparse date-keyed records into dense,
// chronologically ordered daily series for dashboard charts.
//
// Chart widgets expect one entry per calendar day for a trailing window
// ending today; days with no recorded activity must still appear with
// zero values so the x-axis stays continuous.
package calendarfill

import (
	"sort"
	"time"
)

// DateFormat is the canonical key format for daily series.
const DateFormat = "2006-01-02"

// Default window lengths used by the dashboard.
const (
	DefaultSeriesWindow = 7  // sparkline cards
	DefaultTableWindow  = 31 // daily activity chart
)

// nowFunc is the clock source; overridable in tests.
var nowFunc = time.Now

// Point is a single scalar value keyed by calendar day.
type Point struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// Row is a multi-field daily record keyed by calendar day.
type Row struct {
	Date   string           `json:"date"`
	Fields map[string]int64 `json:"fields"`
}

// Series fills a sparse scalar series to exactly window entries covering
// the consecutive calendar days ending today in loc, oldest first. Days
// present in records keep their value; missing days get zero. If two
// records share a date the later one wins. A nil loc means UTC.
func Series(records []Point, window int, loc *time.Location) []Point {
	if window <= 0 {
		window = DefaultSeriesWindow
	}

	byDate := make(map[string]int64, len(records))
	for _, p := range records {
		byDate[normalizeKey(p.Date)] = p.Value
	}

	out := make([]Point, 0, window)
	for _, day := range windowDays(window, loc) {
		out = append(out, Point{Date: day, Value: byDate[day]})
	}
	return out
}

// Table fills a sparse multi-field series to exactly window entries, one
// per calendar day ending today in loc, oldest first. Every output row
// carries all declared fields; days absent from records get the zero
// value for each field. Fields present on an input row but not declared
// are dropped, keeping the payload shape fixed for the chart layer. A
// nil loc means UTC.
func Table(records []Row, window int, fields []string, loc *time.Location) []Row {
	if window <= 0 {
		window = DefaultTableWindow
	}

	byDate := make(map[string]map[string]int64, len(records))
	for _, rec := range records {
		key := normalizeKey(rec.Date)
		vals := make(map[string]int64, len(fields))
		for _, f := range fields {
			vals[f] = rec.Fields[f]
		}
		byDate[key] = vals
	}

	out := make([]Row, 0, window)
	for _, day := range windowDays(window, loc) {
		vals, ok := byDate[day]
		if !ok {
			vals = make(map[string]int64, len(fields))
			for _, f := range fields {
				vals[f] = 0
			}
		}
		out = append(out, Row{Date: day, Fields: vals})
	}
	return out
}

// windowDays returns the window consecutive day keys ending today in
// loc, oldest first. "Today" is the current calendar day in loc, not in
// the server's zone.
func windowDays(window int, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	today := nowFunc().In(loc)
	days := make([]string, 0, window)
	for i := window - 1; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i).Format(DateFormat))
	}
	return days
}

// normalizeKey reduces any supported date representation to YYYY-MM-DD.
// Full timestamps are truncated to their date part; already-normalized
// keys pass through unchanged.
func normalizeKey(date string) string {
	if len(date) <= len(DateFormat) {
		return date
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format(DateFormat)
		}
	}
	return date[:len(DateFormat)]
}

// SortedFieldNames returns the field names of a row in stable order.
// Handy for building chart legends deterministically.
func SortedFieldNames(r Row) []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
