package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// RequestLog tags every request with a generated id and logs method,
// path, status and duration. Health and metrics probes are not logged.
func RequestLog(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		reqID := uuid.NewString()
		ctx.Response.Header.Set("X-Request-ID", reqID)

		next(ctx)

		path := string(ctx.Path())
		if path == "/healthz" || path == "/metrics" {
			return
		}
		log.Info().
			Str("request_id", reqID).
			Str("method", string(ctx.Method())).
			Str("path", path).
			Int("status", ctx.Response.StatusCode()).
			Dur("duration", time.Since(start)).
			Str("ip", ctx.RemoteAddr().String()).
			Msg("http request")
	}
}
