// Package stats implements the report engine: it turns raw usage events
// into the aggregate shapes the admin API serves. Simple aggregates
// (counts, distinct counts, group-and-count) are pushed into SQL; shapes
// that need per-group distinct sets are computed here over fetched rows,
// since they are not expressible as a flat per-event query.
package stats

import (
	"sort"
	"time"

	"github.com/locmaymo/api-stats/internal/db"
)

// HandleStats is one by-handle report row.
type HandleStats struct {
	Handle        string    `json:"handle"`
	TotalRequests int64     `json:"totalRequests"`
	LastActivity  time.Time `json:"lastActivity"`
	Sources       []string  `json:"sources"`
	Paths         []string  `json:"paths"`
}

// CredentialStats is one credential-list row: usage of one API key as
// seen under one (handle, source, proxy, key source) combination.
type CredentialStats struct {
	APIKey               string    `json:"apiKey"`
	Handle               string    `json:"handle"`
	ChatCompletionSource string    `json:"chatCompletionSource,omitempty"`
	ReverseProxy         string    `json:"reverseProxy,omitempty"`
	APIKeySource         string    `json:"apiKeySource,omitempty"`
	FirstUsed            time.Time `json:"firstUsed"`
	LastUsed             time.Time `json:"lastUsed"`
	TotalUsage           int64     `json:"totalUsage"`
	Paths                []string  `json:"paths"`
	SecretKeys           []string  `json:"secretKeys"`
}

// TopCredential is one top-credentials report row.
type TopCredential struct {
	APIKey        string    `json:"apiKey"`
	TotalUsage    int64     `json:"totalUsage"`
	UniqueHandles int       `json:"uniqueHandles"`
	UniqueSources int       `json:"uniqueSources"`
	LastUsed      time.Time `json:"lastUsed"`
	APIKeySource  string    `json:"apiKeySource,omitempty"`
}

// stringSet collects distinct non-empty values.
type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// GroupByHandle collapses events per handle, collecting the distinct
// sources and paths each handle touched. Rows are ordered by request
// count descending, handle ascending on ties so pages are stable.
func GroupByHandle(events []db.Event) []HandleStats {
	type accum struct {
		count   int64
		last    time.Time
		sources stringSet
		paths   stringSet
	}
	groups := make(map[string]*accum)
	for _, e := range events {
		a := groups[e.Handle]
		if a == nil {
			a = &accum{sources: stringSet{}, paths: stringSet{}}
			groups[e.Handle] = a
		}
		a.count++
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
		a.sources.add(e.ChatCompletionSource)
		a.paths.add(e.Path)
	}

	rows := make([]HandleStats, 0, len(groups))
	for handle, a := range groups {
		rows = append(rows, HandleStats{
			Handle:        handle,
			TotalRequests: a.count,
			LastActivity:  a.last,
			Sources:       a.sources.sorted(),
			Paths:         a.paths.sorted(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRequests != rows[j].TotalRequests {
			return rows[i].TotalRequests > rows[j].TotalRequests
		}
		return rows[i].Handle < rows[j].Handle
	})
	return rows
}

// credentialKey is the composite group key of the credential list: the
// same API key used by a different handle, backend, proxy or key source
// produces a separate row.
type credentialKey struct {
	apiKey       string
	handle       string
	source       string
	reverseProxy string
	keySource    string
}

// GroupCredentials collapses events (already restricted to non-empty
// API keys) on the composite credential key. Rows are ordered by last
// use descending, then by the key fields for stable pagination.
func GroupCredentials(events []db.Event) []CredentialStats {
	type accum struct {
		first      time.Time
		last       time.Time
		count      int64
		paths      stringSet
		secretKeys stringSet
	}
	groups := make(map[credentialKey]*accum)
	for _, e := range events {
		if e.APIKey == "" {
			continue
		}
		k := credentialKey{
			apiKey:       e.APIKey,
			handle:       e.Handle,
			source:       e.ChatCompletionSource,
			reverseProxy: e.Proxy(),
			keySource:    e.APIKeySource,
		}
		a := groups[k]
		if a == nil {
			a = &accum{first: e.Timestamp, last: e.Timestamp, paths: stringSet{}, secretKeys: stringSet{}}
			groups[k] = a
		}
		a.count++
		if e.Timestamp.Before(a.first) {
			a.first = e.Timestamp
		}
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
		a.paths.add(e.Path)
		a.secretKeys.add(e.SecretKey)
	}

	rows := make([]CredentialStats, 0, len(groups))
	for k, a := range groups {
		rows = append(rows, CredentialStats{
			APIKey:               k.apiKey,
			Handle:               k.handle,
			ChatCompletionSource: k.source,
			ReverseProxy:         k.reverseProxy,
			APIKeySource:         k.keySource,
			FirstUsed:            a.first,
			LastUsed:             a.last,
			TotalUsage:           a.count,
			Paths:                a.paths.sorted(),
			SecretKeys:           a.secretKeys.sorted(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.LastUsed.Equal(b.LastUsed) {
			return a.LastUsed.After(b.LastUsed)
		}
		if a.APIKey != b.APIKey {
			return a.APIKey < b.APIKey
		}
		if a.Handle != b.Handle {
			return a.Handle < b.Handle
		}
		if a.ChatCompletionSource != b.ChatCompletionSource {
			return a.ChatCompletionSource < b.ChatCompletionSource
		}
		return a.ReverseProxy < b.ReverseProxy
	})
	return rows
}

// TopCredentials ranks API keys by usage count. APIKeySource is taken
// from the first event seen for the key that carries one. limit <= 0
// means no limit.
func TopCredentials(events []db.Event, limit int) []TopCredential {
	type accum struct {
		count     int64
		handles   stringSet
		sources   stringSet
		last      time.Time
		keySource string
	}
	groups := make(map[string]*accum)
	for _, e := range events {
		if e.APIKey == "" {
			continue
		}
		a := groups[e.APIKey]
		if a == nil {
			a = &accum{handles: stringSet{}, sources: stringSet{}}
			groups[e.APIKey] = a
		}
		a.count++
		a.handles.add(e.Handle)
		a.sources.add(e.ChatCompletionSource)
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
		if a.keySource == "" {
			a.keySource = e.APIKeySource
		}
	}

	rows := make([]TopCredential, 0, len(groups))
	for key, a := range groups {
		rows = append(rows, TopCredential{
			APIKey:        key,
			TotalUsage:    a.count,
			UniqueHandles: len(a.handles),
			UniqueSources: len(a.sources),
			LastUsed:      a.last,
			APIKeySource:  a.keySource,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalUsage != rows[j].TotalUsage {
			return rows[i].TotalUsage > rows[j].TotalUsage
		}
		return rows[i].APIKey < rows[j].APIKey
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
