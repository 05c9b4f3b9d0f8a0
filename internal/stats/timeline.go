package stats

import (
	"sort"
	"time"

	"github.com/locmaymo/api-stats/internal/db"
)

// Timeline bucket granularities. Anything unrecognized falls back to hour.
const (
	IntervalMinute = "minute"
	IntervalHour   = "hour"
	IntervalDay    = "day"
)

// TimelineBucket is one time-series point: the truncated timestamp (as a
// sortable label), the event count and the distinct handle count.
type TimelineBucket struct {
	Bucket      string `json:"bucket"`
	Count       int64  `json:"count"`
	UniqueUsers int    `json:"uniqueUsers"`
}

// UsageBucket is a timeline point without the user breakdown, used by
// the per-credential detail timeline.
type UsageBucket struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// BucketKey floors t to the interval and renders it as the bucket
// label. The label formats sort chronologically as plain strings:
// minute "2006-01-02 15:04", hour "2006-01-02 15:00", day "2006-01-02".
// Truncation uses the timestamp's own location as stored.
func BucketKey(t time.Time, interval string) string {
	switch interval {
	case IntervalMinute:
		return t.Format("2006-01-02 15:04")
	case IntervalDay:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:00")
	}
}

// BucketEvents collapses events into time buckets of the given
// granularity, counting events and distinct handles per bucket.
// Buckets are ordered ascending.
func BucketEvents(events []db.Event, interval string) []TimelineBucket {
	type accum struct {
		count   int64
		handles stringSet
	}
	groups := make(map[string]*accum)
	for _, e := range events {
		k := BucketKey(e.Timestamp, interval)
		a := groups[k]
		if a == nil {
			a = &accum{handles: stringSet{}}
			groups[k] = a
		}
		a.count++
		a.handles.add(e.Handle)
	}

	rows := make([]TimelineBucket, 0, len(groups))
	for k, a := range groups {
		rows = append(rows, TimelineBucket{Bucket: k, Count: a.count, UniqueUsers: len(a.handles)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Bucket < rows[j].Bucket })
	return rows
}

// BucketUsage is BucketEvents without the handle breakdown, always hourly.
func BucketUsage(events []db.Event) []UsageBucket {
	groups := make(map[string]int64)
	for _, e := range events {
		groups[BucketKey(e.Timestamp, IntervalHour)]++
	}

	rows := make([]UsageBucket, 0, len(groups))
	for k, n := range groups {
		rows = append(rows, UsageBucket{Bucket: k, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Bucket < rows[j].Bucket })
	return rows
}
