package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mercagoods/storefront-backend/pkg/logger"
)

const (
	sessionCookieName = "sf_session"
	sessionHeader     = "X-Session-Id"

	// thirty days, matching the cart persistence TTL default
	sessionCookieMaxAge = 30 * 24 * 60 * 60
)

// Session assigns every request a stable shopper session id. The id comes
// from the session cookie, falling back to the X-Session-Id header for
// cookie-less clients, and is minted fresh when neither is present. Carts are
// keyed by this id.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionIDFromRequest(r)
			minted := false
			if sessionID == "" {
				sessionID = uuid.NewString()
				minted = true
			}

			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   sessionCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(sessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				if minted {
					logg.Debug(ctx, "minted new shopper session")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id := strings.TrimSpace(cookie.Value); isValidSessionID(id) {
			return id
		}
	}
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); isValidSessionID(id) {
		return id
	}
	return ""
}

func isValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
