package handlers

import (
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/locmaymo/api-stats/internal/stats"
)

// reportFailed logs the real cause for operators and sends the caller a
// fixed message that leaks nothing about the query or the store.
func reportFailed(ctx *fasthttp.RequestCtx, report string, err error) {
	log.Error().Err(err).Str("report", report).Msg("report query failed")
	errJSON(ctx, fasthttp.StatusInternalServerError, "Failed to get "+report)
}

func reportServed(report string) {
	reportsTotal.WithLabelValues(report).Inc()
}

// Overview serves the global usage summary.
func Overview(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		o, err := stats.GetOverview(gdb, filterFromCtx(ctx))
		if err != nil {
			reportFailed(ctx, "overview", err)
			return
		}
		reportServed("overview")
		jsonBody(ctx, o)
	}
}

// ByHandle serves the paginated per-handle breakdown.
func ByHandle(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p := pageFromCtx(ctx, stats.DefaultPageSize)
		report, err := stats.GetByHandle(gdb, filterFromCtx(ctx), p)
		if err != nil {
			reportFailed(ctx, "stats by handle", err)
			return
		}
		reportServed("by-handle")
		jsonBody(ctx, report)
	}
}

// BySource serves the per-backend breakdown.
func BySource(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rows, err := stats.GetBySource(gdb, filterFromCtx(ctx))
		if err != nil {
			reportFailed(ctx, "stats by source", err)
			return
		}
		reportServed("by-source")
		jsonBody(ctx, rows)
	}
}

// ByProxy serves the per-proxy breakdown over events that used one.
func ByProxy(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rows, err := stats.GetByProxy(gdb, filterFromCtx(ctx))
		if err != nil {
			reportFailed(ctx, "stats by proxy", err)
			return
		}
		reportServed("by-proxy")
		jsonBody(ctx, rows)
	}
}

// Timeline serves the time-series report. interval is minute, hour or
// day; anything else means hour.
func Timeline(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		interval := query(ctx, "interval")
		rows, err := stats.GetTimeline(gdb, filterFromCtx(ctx), interval)
		if err != nil {
			reportFailed(ctx, "timeline stats", err)
			return
		}
		reportServed("timeline")
		jsonBody(ctx, rows)
	}
}

// CredentialList serves the paginated credential listing, as JSON or as
// a CSV attachment when format=csv.
func CredentialList(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p := pageFromCtx(ctx, stats.CredentialPageSize)
		report, err := stats.GetCredentialList(gdb, filterFromCtx(ctx), p)
		if err != nil {
			reportFailed(ctx, "API keys", err)
			return
		}
		reportServed("api-keys")

		if query(ctx, "format") == "csv" {
			ctx.SetContentType("text/csv")
			ctx.Response.Header.Set("Content-Disposition", "attachment; filename=api-keys.csv")
			ctx.SetBodyString(stats.CredentialsCSV(report.Data))
			return
		}
		jsonBody(ctx, report)
	}
}

// CredentialDetails serves the single-key report. An unknown key yields
// a zero-valued summary, not an error.
func CredentialDetails(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		apiKey, _ := ctx.UserValue("apiKey").(string)
		if apiKey == "" {
			errJSON(ctx, fasthttp.StatusBadRequest, "apiKey required")
			return
		}
		d, err := stats.GetCredentialDetails(gdb, apiKey, filterFromCtx(ctx))
		if err != nil {
			reportFailed(ctx, "API key details", err)
			return
		}
		reportServed("api-key-details")
		jsonBody(ctx, d)
	}
}

// DuplicateCredentials serves the credential-reuse report.
func DuplicateCredentials(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rows, err := stats.GetDuplicates(gdb, filterFromCtx(ctx))
		if err != nil {
			reportFailed(ctx, "duplicate API keys", err)
			return
		}
		reportServed("duplicate-api-keys")
		jsonBody(ctx, rows)
	}
}

// TopCredentials serves the top-keys ranking.
func TopCredentials(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		limit := stats.ParsePageParams("", query(ctx, "limit"), stats.TopCredentialLimit).Limit
		rows, err := stats.GetTopCredentials(gdb, filterFromCtx(ctx), limit)
		if err != nil {
			reportFailed(ctx, "top API keys", err)
			return
		}
		reportServed("top-api-keys")
		jsonBody(ctx, rows)
	}
}
