package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionCookieName = "user_session"

type clientIDKey struct{}

// SessionCookie makes sure every request carries a user_session cookie and exposes its value through ClientID.
// The cookie is re-sent on every response so it expires ttl after the client's last request.
func SessionCookie(logger *slog.Logger, ttl time.Duration) func(http.Handler) http.Handler {
	log := logger.With("method", "SessionCookie")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var clientID string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				clientID = cookie.Value
			}

			if clientID == "" {
				clientID = uuid.NewString()
				log.Info("session cookie not found, new one created", "cookie", clientID)
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    clientID,
				Expires:  time.Now().Add(ttl),
				Path:     "/",
				HttpOnly: true,
			})

			ctx := context.WithValue(r.Context(), clientIDKey{}, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientID returns the browser session id placed by SessionCookie.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
