package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/api/middleware"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// RefreshCookieName stores the refresh token scoped to the refresh endpoint
// flow; browsers send it back alongside the jwt cookie.
const RefreshCookieName = "refreshToken"

// loggedOutValue is the sentinel written over both cookies on logout. It
// expires almost immediately; the short grace keeps racing in-flight
// requests from resurrecting the old cookie.
const (
	loggedOutValue  = "loggedout"
	loggedOutExpiry = 10 * time.Second
)

func setSessionCookies(c echo.Context, pair ports.TokenPair, accessTTL, refreshTTL time.Duration, secure bool) {
	now := time.Now().UTC()
	c.SetCookie(sessionCookie(middleware.JWTCookieName, pair.AccessToken, now.Add(accessTTL), secure))
	c.SetCookie(sessionCookie(RefreshCookieName, pair.RefreshToken, now.Add(refreshTTL), secure))
}

func clearSessionCookies(c echo.Context, secure bool) {
	expires := time.Now().UTC().Add(loggedOutExpiry)
	c.SetCookie(sessionCookie(middleware.JWTCookieName, loggedOutValue, expires, secure))
	c.SetCookie(sessionCookie(RefreshCookieName, loggedOutValue, expires, secure))
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
