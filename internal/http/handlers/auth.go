package handlers

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/locmaymo/api-stats/internal/config"
	appmw "github.com/locmaymo/api-stats/internal/http/middleware"
)

const sessionTTL = 24 * time.Hour

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the admin credentials and issues a session JWT, returned
// in the body and set as an httpOnly cookie. The admin password is only
// held as a bcrypt hash, computed once at startup.
func Login(cfg *config.Config) fasthttp.RequestHandler {
	hash, hashErr := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)

	return func(ctx *fasthttp.RequestCtx) {
		if cfg.JWTSecret == "" || hashErr != nil {
			log.Error().Err(hashErr).Msg("admin login is not configured")
			errJSON(ctx, fasthttp.StatusInternalServerError, "login unavailable")
			return
		}

		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errJSON(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Username != cfg.AdminUser {
			errJSON(ctx, fasthttp.StatusBadRequest, "Invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
			errJSON(ctx, fasthttp.StatusBadRequest, "Invalid credentials")
			return
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": req.Username,
			"role":     "admin",
			"iat":      now.Unix(),
			"exp":      now.Add(sessionTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Error().Err(err).Msg("failed to sign session token")
			errJSON(ctx, fasthttp.StatusInternalServerError, "failed to issue token")
			return
		}

		var c fasthttp.Cookie
		c.SetKey(appmw.AdminCookieName)
		c.SetValue(signed)
		c.SetPath("/")
		c.SetHTTPOnly(true)
		c.SetMaxAge(int(sessionTTL.Seconds()))
		ctx.Response.Header.SetCookie(&c)

		jsonBody(ctx, map[string]string{"message": "Login successful", "token": signed})
	}
}

// Logout clears the session cookie.
func Logout() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var c fasthttp.Cookie
		c.SetKey(appmw.AdminCookieName)
		c.SetValue("")
		c.SetPath("/")
		c.SetMaxAge(-1)
		ctx.Response.Header.SetCookie(&c)
		jsonBody(ctx, map[string]string{"message": "Logged out"})
	}
}
