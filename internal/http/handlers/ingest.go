package handlers

import (
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbpkg "github.com/locmaymo/api-stats/internal/db"
)

var (
	eventsTotal  *prometheus.CounterVec
	reportsTotal *prometheus.CounterVec
)

// InitMetrics registers the service's Prometheus collectors. Call once
// at startup before the server starts handling requests.
func InitMetrics() {
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apistats",
			Name:      "events_total",
			Help:      "Total number of ingested usage events.",
		},
		[]string{"source", "path"},
	)
	reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apistats",
			Name:      "reports_total",
			Help:      "Total number of report requests served.",
		},
		[]string{"report"},
	)
	prometheus.MustRegister(eventsTotal, reportsTotal)
}

type apiInfoPayload struct {
	Handle               string     `json:"handle"`
	Timestamp            *time.Time `json:"timestamp"`
	Path                 string     `json:"path"`
	ReverseProxy         *string    `json:"reverseProxy"`
	ProxyPassword        string     `json:"proxyPassword"`
	ChatCompletionSource string     `json:"chatCompletionSource"`
	APIKey               string     `json:"apiKey"`
	SecretKey            string     `json:"secretKey"`
	APIKeySource         string     `json:"apiKeySource"`
}

// payloadFields are the body keys mapped onto event columns; anything
// else the client sends is preserved in Attributes.
var payloadFields = map[string]struct{}{
	"handle": {}, "timestamp": {}, "path": {}, "reverseProxy": {},
	"proxyPassword": {}, "chatCompletionSource": {}, "apiKey": {},
	"secretKey": {}, "apiKeySource": {},
}

// Ingest accepts one usage event from the reporting client and appends
// it to the event log. Events are never updated afterwards.
func Ingest(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		body := ctx.PostBody()

		var p apiInfoPayload
		if err := json.Unmarshal(body, &p); err != nil {
			errJSON(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if p.Handle == "" || p.Path == "" || p.Timestamp == nil {
			errJSON(ctx, fasthttp.StatusBadRequest, "handle, timestamp and path are required")
			return
		}
		if !dbpkg.ValidKeySource(p.APIKeySource) {
			errJSON(ctx, fasthttp.StatusBadRequest, "invalid apiKeySource")
			return
		}

		attrs := datatypes.JSONMap{}
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err == nil {
			for k, v := range raw {
				if _, known := payloadFields[k]; !known {
					attrs[k] = v
				}
			}
		}

		rec := dbpkg.Event{
			Handle:               p.Handle,
			Timestamp:            *p.Timestamp,
			Path:                 p.Path,
			ReverseProxy:         p.ReverseProxy,
			ProxyPassword:        p.ProxyPassword,
			ChatCompletionSource: p.ChatCompletionSource,
			APIKey:               p.APIKey,
			SecretKey:            p.SecretKey,
			APIKeySource:         p.APIKeySource,
			Attributes:           attrs,
		}
		if err := gdb.Create(&rec).Error; err != nil {
			log.Error().Err(err).Msg("failed to save event")
			errJSON(ctx, fasthttp.StatusInternalServerError, "Failed to save API info")
			return
		}

		eventsTotal.WithLabelValues(rec.ChatCompletionSource, rec.Path).Inc()

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonBody(ctx, map[string]string{"message": "API info saved successfully"})
	}
}
