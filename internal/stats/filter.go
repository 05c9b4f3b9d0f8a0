package stats

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ReportFilter is the base filter shared by every report: an optional
// inclusive [StartDate, EndDate] window plus at most one field filter
// from the allow-list. It is built per request and never stored.
type ReportFilter struct {
	StartDate *time.Time
	EndDate   *time.Time

	FilterBy    string
	FilterValue string
}

// allowedFilterFields maps the filterBy request values to event columns.
// Anything else in filterBy is silently ignored.
var allowedFilterFields = map[string]string{
	"handle":               "handle",
	"chatCompletionSource": "chat_completion_source",
	"reverseProxy":         "reverse_proxy",
	"apiKeySource":         "api_key_source",
	"path":                 "path",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseFilter builds a ReportFilter from raw query parameters. The date
// window only applies when both bounds parse independently; otherwise the
// report runs unrestricted rather than failing.
func ParseFilter(startDate, endDate, filterBy, filterValue string) ReportFilter {
	var f ReportFilter
	if start, ok := parseDate(startDate); ok {
		if end, ok := parseDate(endDate); ok {
			f.StartDate = &start
			f.EndDate = &end
		}
	}
	if filterValue != "" {
		if _, ok := allowedFilterFields[filterBy]; ok {
			f.FilterBy = filterBy
			f.FilterValue = filterValue
		}
	}
	return f
}

// Scope applies the filter to q as WHERE clauses. reverseProxy is a
// case-insensitive substring match, every other field matches exactly.
func (f ReportFilter) Scope(q *gorm.DB) *gorm.DB {
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("timestamp >= ? AND timestamp <= ?", *f.StartDate, *f.EndDate)
	}
	if col, ok := allowedFilterFields[f.FilterBy]; ok && f.FilterValue != "" {
		if f.FilterBy == "reverseProxy" {
			q = q.Where("reverse_proxy ILIKE ?", "%"+escapeLike(f.FilterValue)+"%")
		} else {
			q = q.Where(col+" = ?", f.FilterValue)
		}
	}
	return q
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
