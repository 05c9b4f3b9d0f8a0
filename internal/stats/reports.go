package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/locmaymo/api-stats/internal/db"
)

// SourceCount is a (name, count) pair for the overview top lists.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// PathCount is a (path, count) pair for the overview top lists.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// Overview is the global summary: totals plus the ten busiest sources
// and paths within the filter window.
type Overview struct {
	TotalRequests int64         `json:"totalRequests"`
	UniqueUsers   int64         `json:"uniqueUsers"`
	TopSources    []SourceCount `json:"topSources"`
	TopPaths      []PathCount   `json:"topPaths"`
}

// SourceStats is one by-source report row.
type SourceStats struct {
	Source        string    `json:"source"`
	TotalRequests int64     `json:"totalRequests"`
	UniqueUsers   int64     `json:"uniqueUsers"`
	LastActivity  time.Time `json:"lastActivity"`
}

// ProxyStats is one by-proxy report row.
type ProxyStats struct {
	Proxy         string    `json:"proxy"`
	TotalRequests int64     `json:"totalRequests"`
	UniqueUsers   int64     `json:"uniqueUsers"`
	LastActivity  time.Time `json:"lastActivity"`
}

// HandleReport is the paginated by-handle response.
type HandleReport struct {
	Data       []HandleStats `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// CredentialReport is the paginated credential-list response.
type CredentialReport struct {
	Data       []CredentialStats `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// CredentialUsage summarizes all use of a single API key.
type CredentialUsage struct {
	TotalRequests int64      `json:"totalRequests"`
	UniqueHandles int        `json:"uniqueHandles"`
	UniqueSources int        `json:"uniqueSources"`
	UniqueProxies int        `json:"uniqueProxies"`
	UniquePaths   int        `json:"uniquePaths"`
	FirstUsed     *time.Time `json:"firstUsed,omitempty"`
	LastUsed      *time.Time `json:"lastUsed,omitempty"`
	APIKeySource  string     `json:"apiKeySource,omitempty"`
	Handles       []string   `json:"handles"`
	Sources       []string   `json:"sources"`
	Proxies       []string   `json:"proxies"`
	Paths         []string   `json:"paths"`
}

// CredentialDetails is the per-key report: the usage summary plus an
// hourly timeline for that key alone.
type CredentialDetails struct {
	APIKey   string          `json:"apiKey"`
	Stats    CredentialUsage `json:"stats"`
	Timeline []UsageBucket   `json:"timeline"`
}

func eventQuery(gdb *gorm.DB, f ReportFilter) *gorm.DB {
	return f.Scope(gdb.Model(&db.Event{}))
}

// keyedEventQuery restricts to events that carry a credential. NULL
// never compares equal, so the one predicate also drops NULL keys.
func keyedEventQuery(gdb *gorm.DB, f ReportFilter) *gorm.DB {
	return eventQuery(gdb, f).Where("api_key <> ''")
}

// GetOverview runs the global summary report.
func GetOverview(gdb *gorm.DB, f ReportFilter) (*Overview, error) {
	o := &Overview{TopSources: []SourceCount{}, TopPaths: []PathCount{}}

	if err := eventQuery(gdb, f).Count(&o.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := eventQuery(gdb, f).Distinct("handle").Count(&o.UniqueUsers).Error; err != nil {
		return nil, err
	}
	if err := eventQuery(gdb, f).
		Select("chat_completion_source AS source, COUNT(*) AS count").
		Group("chat_completion_source").
		Order("count(*) DESC, chat_completion_source").
		Limit(10).
		Scan(&o.TopSources).Error; err != nil {
		return nil, err
	}
	if err := eventQuery(gdb, f).
		Select("path AS path, COUNT(*) AS count").
		Group("path").
		Order("count(*) DESC, path").
		Limit(10).
		Scan(&o.TopPaths).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// GetByHandle runs the paginated per-handle report. Grouping happens
// over fetched rows because each row carries distinct value sets; the
// pagination total is the number of distinct handles, not raw events.
func GetByHandle(gdb *gorm.DB, f ReportFilter, p PageParams) (*HandleReport, error) {
	var events []db.Event
	if err := eventQuery(gdb, f).
		Select("handle", "timestamp", "chat_completion_source", "path").
		Find(&events).Error; err != nil {
		return nil, err
	}

	rows := GroupByHandle(events)
	total := int64(len(rows))
	return &HandleReport{
		Data:       pageSlice(rows, p),
		Pagination: NewPagination(p, total),
	}, nil
}

// GetBySource runs the per-backend report.
func GetBySource(gdb *gorm.DB, f ReportFilter) ([]SourceStats, error) {
	rows := []SourceStats{}
	err := eventQuery(gdb, f).
		Select("chat_completion_source AS source, COUNT(*) AS total_requests, COUNT(DISTINCT handle) AS unique_users, MAX(timestamp) AS last_activity").
		Group("chat_completion_source").
		Order("count(*) DESC, chat_completion_source").
		Scan(&rows).Error
	return rows, err
}

// GetByProxy runs the per-proxy report over events that used one.
func GetByProxy(gdb *gorm.DB, f ReportFilter) ([]ProxyStats, error) {
	rows := []ProxyStats{}
	err := eventQuery(gdb, f).
		Where("reverse_proxy IS NOT NULL").
		Select("reverse_proxy AS proxy, COUNT(*) AS total_requests, COUNT(DISTINCT handle) AS unique_users, MAX(timestamp) AS last_activity").
		Group("reverse_proxy").
		Order("count(*) DESC, reverse_proxy").
		Scan(&rows).Error
	return rows, err
}

// GetTimeline runs the time-series report at the given granularity.
func GetTimeline(gdb *gorm.DB, f ReportFilter, interval string) ([]TimelineBucket, error) {
	var events []db.Event
	if err := eventQuery(gdb, f).
		Select("timestamp", "handle").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return BucketEvents(events, interval), nil
}

// GetCredentialList runs the paginated credential-list report.
func GetCredentialList(gdb *gorm.DB, f ReportFilter, p PageParams) (*CredentialReport, error) {
	var events []db.Event
	if err := keyedEventQuery(gdb, f).
		Select("api_key", "handle", "chat_completion_source", "reverse_proxy", "api_key_source", "timestamp", "path", "secret_key").
		Find(&events).Error; err != nil {
		return nil, err
	}

	rows := GroupCredentials(events)
	total := int64(len(rows))
	return &CredentialReport{
		Data:       pageSlice(rows, p),
		Pagination: NewPagination(p, total),
	}, nil
}

// GetCredentialDetails runs the single-key report. An unknown key is
// not an error: the summary comes back zero-valued with an empty timeline.
func GetCredentialDetails(gdb *gorm.DB, apiKey string, f ReportFilter) (*CredentialDetails, error) {
	var events []db.Event
	if err := eventQuery(gdb, f).
		Where("api_key = ?", apiKey).
		Order("id").
		Find(&events).Error; err != nil {
		return nil, err
	}

	d := &CredentialDetails{
		APIKey: apiKey,
		Stats: CredentialUsage{
			Handles: []string{}, Sources: []string{}, Proxies: []string{}, Paths: []string{},
		},
		Timeline: BucketUsage(events),
	}
	if len(events) == 0 {
		return d, nil
	}

	handles, sources, proxies, paths := stringSet{}, stringSet{}, stringSet{}, stringSet{}
	first, last := events[0].Timestamp, events[0].Timestamp
	keySource := ""
	for _, e := range events {
		handles.add(e.Handle)
		sources.add(e.ChatCompletionSource)
		proxies.add(e.Proxy())
		paths.add(e.Path)
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
		if keySource == "" {
			keySource = e.APIKeySource
		}
	}
	d.Stats = CredentialUsage{
		TotalRequests: int64(len(events)),
		UniqueHandles: len(handles),
		UniqueSources: len(sources),
		UniqueProxies: len(proxies),
		UniquePaths:   len(paths),
		FirstUsed:     &first,
		LastUsed:      &last,
		APIKeySource:  keySource,
		Handles:       handles.sorted(),
		Sources:       sources.sorted(),
		Proxies:       proxies.sorted(),
		Paths:         paths.sorted(),
	}
	return d, nil
}

// GetDuplicates runs the credential-reuse report.
func GetDuplicates(gdb *gorm.DB, f ReportFilter) ([]DuplicateCredential, error) {
	var events []db.Event
	if err := keyedEventQuery(gdb, f).
		Select("api_key", "handle", "chat_completion_source", "reverse_proxy", "timestamp").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return FindDuplicates(events), nil
}

// GetTopCredentials runs the top-keys report.
func GetTopCredentials(gdb *gorm.DB, f ReportFilter, limit int) ([]TopCredential, error) {
	var events []db.Event
	if err := keyedEventQuery(gdb, f).
		Select("api_key", "handle", "chat_completion_source", "api_key_source", "timestamp").
		Order("id").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return TopCredentials(events, limit), nil
}
