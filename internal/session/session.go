// Package session carries the caller's API credential explicitly from the
// incoming page request to every upstream call.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is the cookie the PriceTracker API sets on login.
const DefaultCookieName = "access_token"

// ErrAnonymous is returned when a session holds no token.
var ErrAnonymous = errors.New("session: no token")

// Session is the credential of a single page request.
type Session struct {
	CookieName string
	Token      string
}

// Claims are the fields the API puts in its access tokens.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// FromRequest reads the session cookie from r.
func FromRequest(r *http.Request, cookieName string) Session {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	s := Session{CookieName: cookieName}
	if c, err := r.Cookie(cookieName); err == nil {
		s.Token = c.Value
	}
	return s
}

// Anonymous reports whether the session carries no token.
func (s Session) Anonymous() bool {
	return s.Token == ""
}

// Apply forwards the session to an upstream request.
func (s Session) Apply(req *http.Request) {
	if s.Anonymous() {
		return
	}
	name := s.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	req.AddCookie(&http.Cookie{Name: name, Value: s.Token})
}

// Claims decodes the token payload without verifying the signature.
// The API remains the authority on whether the token is valid.
func (s Session) Claims() (*Claims, error) {
	if s.Anonymous() {
		return nil, ErrAnonymous
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim in the past.
// Opaque tokens are never considered expired.
func (s Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
