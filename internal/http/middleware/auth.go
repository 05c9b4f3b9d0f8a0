package middleware

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"

	"github.com/locmaymo/api-stats/internal/config"
	httpctx "github.com/locmaymo/api-stats/internal/http/ctx"
)

const bearerPrefix = "Bearer "

// AdminCookieName holds the admin session token between requests.
const AdminCookieName = "adminToken"

func errJSON(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":` + strconv.Quote(msg) + `}`)
}

func bearerToken(ctx *fasthttp.RequestCtx) string {
	auth := ctx.Request.Header.Peek("Authorization")
	if !bytes.HasPrefix(auth, []byte(bearerPrefix)) {
		return ""
	}
	return strings.TrimSpace(string(auth[len(bearerPrefix):]))
}

// BearerAuth guards the ingest endpoint with the configured API key.
func BearerAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := bearerToken(ctx)
			if token == "" {
				errJSON(ctx, fasthttp.StatusUnauthorized, "Missing or invalid API key")
				return
			}
			if cfg.IngestAPIKey == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(cfg.IngestAPIKey)) != 1 {
				errJSON(ctx, fasthttp.StatusUnauthorized, "Invalid API key")
				return
			}
			next(ctx)
		}
	}
}

// AdminAuth verifies the admin session JWT, taken from the adminToken
// cookie or an Authorization bearer header, and puts the admin identity
// on the request context.
func AdminAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := string(ctx.Request.Header.Cookie(AdminCookieName))
			if token == "" {
				token = bearerToken(ctx)
			}
			if token == "" {
				errJSON(ctx, fasthttp.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims := jwt.MapClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !parsed.Valid {
				errJSON(ctx, fasthttp.StatusBadRequest, "Invalid token.")
				return
			}

			username, _ := claims["username"].(string)
			httpctx.SetAdmin(ctx, &httpctx.Admin{Username: username})
			next(ctx)
		}
	}
}
