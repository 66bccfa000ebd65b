// Package common contains shared constants and sentinel errors used across
// NoteKeeper components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the identity token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "

	// TokenCookieName is the cookie cleared on sign-out.
	TokenCookieName = "token"
)
