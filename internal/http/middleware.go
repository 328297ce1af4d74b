package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const ownerKey contextKey = "cart_owner"

const sessionCookieName = "cart_session"

// SessionMiddleware resolves the cart owner for the request. A browser
// without a session cookie gets a fresh owner ID minted and set; the
// cart persisted under that ID survives reloads indefinitely.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ownerID string
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			ownerID = c.Value
		} else {
			ownerID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    ownerID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ownerKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) string {
	if ownerID, ok := ctx.Value(ownerKey).(string); ok {
		return ownerID
	}
	return ""
}
