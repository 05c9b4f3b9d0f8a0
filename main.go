package main

import (
	"os"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/locmaymo/api-stats/internal/config"
	"github.com/locmaymo/api-stats/internal/db"
	"github.com/locmaymo/api-stats/internal/http/handlers"
	appmw "github.com/locmaymo/api-stats/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	handlers.InitMetrics()

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	// Ingestion from the reporting client.
	r.POST("/api/stats/api-info", appmw.BearerAuth(cfg)(handlers.Ingest(gdb)))

	// Admin session.
	r.POST("/api/admin/login", handlers.Login(cfg))
	r.POST("/api/admin/logout", handlers.Logout())

	// Reports.
	admin := appmw.AdminAuth(cfg)
	r.GET("/api/stats/overview", admin(handlers.Overview(gdb)))
	r.GET("/api/stats/by-handle", admin(handlers.ByHandle(gdb)))
	r.GET("/api/stats/by-source", admin(handlers.BySource(gdb)))
	r.GET("/api/stats/by-proxy", admin(handlers.ByProxy(gdb)))
	r.GET("/api/stats/timeline", admin(handlers.Timeline(gdb)))
	r.GET("/api/stats/api-keys", admin(handlers.CredentialList(gdb)))
	r.GET("/api/stats/api-key-details/{apiKey}", admin(handlers.CredentialDetails(gdb)))
	r.GET("/api/stats/duplicate-api-keys", admin(handlers.DuplicateCredentials(gdb)))
	r.GET("/api/stats/top-api-keys", admin(handlers.TopCredentials(gdb)))

	r.GET("/metrics", admin(handlers.Metrics()))

	handler := appmw.RequestLog(r.Handler)

	log.Info().Str("addr", cfg.ListenAddr).Msg("api-stats listening")
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
