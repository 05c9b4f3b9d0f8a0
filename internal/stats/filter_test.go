package stats_test

import (
	"testing"
	"time"

	"github.com/locmaymo/api-stats/internal/stats"
)

func TestParseFilter_Dates(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantRange  bool
	}{
		{"both RFC3339", "2024-01-01T00:00:00Z", "2024-01-31T23:59:59Z", true},
		{"both date-only", "2024-01-01", "2024-01-31", true},
		{"start missing", "", "2024-01-31", false},
		{"end missing", "2024-01-01", "", false},
		{"end garbage disables both", "2024-01-01", "not-a-date", false},
		{"start garbage disables both", "yesterday", "2024-01-31", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := stats.ParseFilter(tt.start, tt.end, "", "")
			got := f.StartDate != nil && f.EndDate != nil
			if got != tt.wantRange {
				t.Errorf("range applied = %v, want %v", got, tt.wantRange)
			}
		})
	}
}

func TestParseFilter_DateValues(t *testing.T) {
	f := stats.ParseFilter("2024-01-01T10:00:00Z", "2024-01-02T10:00:00Z", "", "")
	if f.StartDate == nil || f.EndDate == nil {
		t.Fatal("expected both bounds set")
	}
	wantStart := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !f.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", f.StartDate, wantStart)
	}
}

func TestParseFilter_FieldAllowList(t *testing.T) {
	tests := []struct {
		name     string
		by, val  string
		wantKept bool
	}{
		{"handle allowed", "handle", "alice", true},
		{"source allowed", "chatCompletionSource", "openai", true},
		{"proxy allowed", "reverseProxy", "proxy-a", true},
		{"key source allowed", "apiKeySource", "secret_file", true},
		{"path allowed", "path", "/v1/chat", true},
		{"unknown field ignored", "secretKey", "s1", false},
		{"injection attempt ignored", "handle; DROP TABLE events", "x", false},
		{"empty value ignored", "handle", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := stats.ParseFilter("", "", tt.by, tt.val)
			kept := f.FilterBy != ""
			if kept != tt.wantKept {
				t.Errorf("filter kept = %v, want %v", kept, tt.wantKept)
			}
			if kept && (f.FilterBy != tt.by || f.FilterValue != tt.val) {
				t.Errorf("filter = (%q, %q), want (%q, %q)", f.FilterBy, f.FilterValue, tt.by, tt.val)
			}
		})
	}
}
