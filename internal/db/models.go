package db

import (
	"time"

	"gorm.io/datatypes"
)

// KeySource values record how the credential on an event was obtained
// by the client. Anything else is rejected at ingest time.
const (
	KeySourceProxyPassword = "proxy_password"
	KeySourceSecretFile    = "secret_file"
	KeySourceError         = "error"
)

// ValidKeySource reports whether s is an accepted apiKeySource value.
// The empty string is allowed: events without a credential carry no source.
func ValidKeySource(s string) bool {
	switch s {
	case "", KeySourceProxyPassword, KeySourceSecretFile, KeySourceError:
		return true
	}
	return false
}

// Event is a single reported API request. Rows are append-only: the
// ingest endpoint creates them and nothing ever updates or deletes them.
// All analytics are derived from this table at query time.
type Event struct {
	ID uint `gorm:"primaryKey" json:"-"`

	CreatedAt time.Time `json:"-"`

	// Handle identifies the end user of the reporting client.
	Handle string `gorm:"size:128;not null;index" json:"handle"`

	// Timestamp is when the request happened on the client, not when
	// the event reached us. It is the primary reporting dimension.
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	// Path is the API route the client invoked.
	Path string `gorm:"size:255;not null;index" json:"path"`

	// ReverseProxy names the proxy endpoint used, nil when the request
	// went direct.
	ReverseProxy *string `gorm:"size:255;index" json:"reverseProxy,omitempty"`

	ProxyPassword string `gorm:"size:255" json:"proxyPassword,omitempty"`

	// ChatCompletionSource is the completion backend/provider.
	ChatCompletionSource string `gorm:"size:64;index" json:"chatCompletionSource,omitempty"`

	// APIKey is the credential presented on the request. Events with an
	// empty key are excluded from all credential-centric reports.
	APIKey string `gorm:"size:255;index" json:"apiKey,omitempty"`

	SecretKey string `gorm:"size:255" json:"secretKey,omitempty"`

	// APIKeySource is one of the KeySource constants, or empty.
	APIKeySource string `gorm:"size:32" json:"apiKeySource,omitempty"`

	// Attributes holds any extra fields the client sent that are not
	// part of the fixed schema, so payloads can evolve without
	// migrations. Reports never read it.
	Attributes datatypes.JSONMap `gorm:"type:json" json:"attributes,omitempty"`
}

// Proxy returns the reverse proxy name or "" when none was used.
func (e Event) Proxy() string {
	if e.ReverseProxy == nil {
		return ""
	}
	return *e.ReverseProxy
}
