package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasehold/internal/auth"
)

// Auth authenticates a request by its access token and scopes the context to
// the token's manager. The token is read from the Authorization header, or
// from the access_token query parameter when allowQuery is set (browsers
// cannot attach headers to a websocket upgrade).
func Auth(jwtSecret string, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" && allowQuery {
				tok = r.URL.Query().Get("access_token")
			}

			if tok != "" {
				ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret)
				if ok {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	claims, err := auth.ValidateToken(secret, tokenStr)
	if err != nil {
		return ctx, false
	}

	// Refresh tokens only buy new access tokens.
	if claims.TokenType != "access" {
		log.Debug().Str("typ", claims.TokenType).Msg("auth: rejected non-access token")
		return ctx, false
	}

	managerID, err := uuid.Parse(claims.ManagerID)
	if err != nil {
		return ctx, false
	}

	return WithManager(ctx, managerID, claims.Email), true
}
