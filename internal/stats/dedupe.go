package stats

import (
	"sort"
	"time"

	"github.com/locmaymo/api-stats/internal/db"
)

// DuplicateCredential describes an API key observed under more than one
// handle or more than one completion backend. The distinct sets are
// materialized so the caller sees exactly which identities shared the key.
type DuplicateCredential struct {
	APIKey      string    `json:"apiKey"`
	HandleCount int       `json:"handleCount"`
	SourceCount int       `json:"sourceCount"`
	ProxyCount  int       `json:"proxyCount"`
	Handles     []string  `json:"handles"`
	Sources     []string  `json:"sources"`
	Proxies     []string  `json:"proxies"`
	TotalUsage  int64     `json:"totalUsage"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
}

// FindDuplicates groups events per API key and keeps the keys whose
// distinct handle set or distinct source set has more than one member.
// The predicate needs the full per-key sets, so this cannot be a plain
// per-event filter. Results are ordered by usage count descending.
func FindDuplicates(events []db.Event) []DuplicateCredential {
	type accum struct {
		handles stringSet
		sources stringSet
		proxies stringSet
		count   int64
		first   time.Time
		last    time.Time
	}
	groups := make(map[string]*accum)
	for _, e := range events {
		if e.APIKey == "" {
			continue
		}
		a := groups[e.APIKey]
		if a == nil {
			a = &accum{handles: stringSet{}, sources: stringSet{}, proxies: stringSet{}, first: e.Timestamp, last: e.Timestamp}
			groups[e.APIKey] = a
		}
		a.handles.add(e.Handle)
		a.sources.add(e.ChatCompletionSource)
		a.proxies.add(e.Proxy())
		a.count++
		if e.Timestamp.Before(a.first) {
			a.first = e.Timestamp
		}
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
	}

	rows := make([]DuplicateCredential, 0)
	for key, a := range groups {
		if len(a.handles) <= 1 && len(a.sources) <= 1 {
			continue
		}
		rows = append(rows, DuplicateCredential{
			APIKey:      key,
			HandleCount: len(a.handles),
			SourceCount: len(a.sources),
			ProxyCount:  len(a.proxies),
			Handles:     a.handles.sorted(),
			Sources:     a.sources.sorted(),
			Proxies:     a.proxies.sorted(),
			TotalUsage:  a.count,
			FirstSeen:   a.first,
			LastSeen:    a.last,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalUsage != rows[j].TotalUsage {
			return rows[i].TotalUsage > rows[j].TotalUsage
		}
		return rows[i].APIKey < rows[j].APIKey
	})
	return rows
}
