package stats_test

import (
	"testing"
	"time"

	"github.com/locmaymo/api-stats/internal/db"
	"github.com/locmaymo/api-stats/internal/stats"
)

func TestBucketKey(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 15, 42, 0, time.UTC)

	tests := []struct {
		interval string
		want     string
	}{
		{stats.IntervalMinute, "2024-01-01 10:15"},
		{stats.IntervalHour, "2024-01-01 10:00"},
		{stats.IntervalDay, "2024-01-01"},
		{"fortnight", "2024-01-01 10:00"}, // unknown granularity falls back to hour
		{"", "2024-01-01 10:00"},
	}
	for _, tt := range tests {
		if got := stats.BucketKey(at, tt.interval); got != tt.want {
			t.Errorf("BucketKey(%q) = %q, want %q", tt.interval, got, tt.want)
		}
	}
}

func TestBucketEvents_HourCollapsesMinuteSplits(t *testing.T) {
	events := []db.Event{
		{Handle: "alice", Timestamp: time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{Handle: "bob", Timestamp: time.Date(2024, 1, 1, 10, 45, 0, 0, time.UTC)},
	}

	hourly := stats.BucketEvents(events, stats.IntervalHour)
	if len(hourly) != 1 {
		t.Fatalf("hourly buckets = %d, want 1", len(hourly))
	}
	if hourly[0].Bucket != "2024-01-01 10:00" {
		t.Errorf("bucket = %q, want %q", hourly[0].Bucket, "2024-01-01 10:00")
	}
	if hourly[0].Count != 2 || hourly[0].UniqueUsers != 2 {
		t.Errorf("count/uniqueUsers = %d/%d, want 2/2", hourly[0].Count, hourly[0].UniqueUsers)
	}

	byMinute := stats.BucketEvents(events, stats.IntervalMinute)
	if len(byMinute) != 2 {
		t.Fatalf("minute buckets = %d, want 2", len(byMinute))
	}
}

func TestBucketEvents_Ascending(t *testing.T) {
	events := []db.Event{
		{Handle: "a", Timestamp: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
		{Handle: "a", Timestamp: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)},
		{Handle: "a", Timestamp: time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)},
	}

	rows := stats.BucketEvents(events, stats.IntervalHour)
	for i := 1; i < len(rows); i++ {
		if rows[i].Bucket < rows[i-1].Bucket {
			t.Fatalf("buckets out of order: %q before %q", rows[i-1].Bucket, rows[i].Bucket)
		}
	}
}

func TestBucketUsage(t *testing.T) {
	events := []db.Event{
		{Handle: "a", Timestamp: time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{Handle: "b", Timestamp: time.Date(2024, 1, 1, 10, 45, 0, 0, time.UTC)},
		{Handle: "a", Timestamp: time.Date(2024, 1, 1, 11, 5, 0, 0, time.UTC)},
	}

	rows := stats.BucketUsage(events)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Bucket != "2024-01-01 10:00" || rows[0].Count != 2 {
		t.Errorf("rows[0] = %+v, want 10:00 bucket with count 2", rows[0])
	}
	if rows[1].Bucket != "2024-01-01 11:00" || rows[1].Count != 1 {
		t.Errorf("rows[1] = %+v, want 11:00 bucket with count 1", rows[1])
	}
}
