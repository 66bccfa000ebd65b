package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// Guard turns an Authorization header value into a user id.
type Guard struct {
	tokens *TokenService
}

func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate expects "Bearer <token>". A missing header, a different scheme
// or an empty token yields common.ErrorUnauthenticated; a token that fails
// verification yields common.ErrorUnauthenticated wrapping the token error.
// The user record itself is not looked up.
func (g *Guard) Authenticate(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok {
		return "", common.ErrorUnauthenticated
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", common.ErrorUnauthenticated
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthenticated, err)
	}
	return claims.UserID, nil
}
