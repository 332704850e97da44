package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "session_store"

// Middleware ensures every request carries a session cookie and exposes the
// session's Store through the gin context. The cookie is the sole access
// token for the chat surface; no user authentication is involved there.
func Middleware(backend Backend, cookieName string, maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
		}

		// Re-issue the cookie on every request to refresh its lifetime.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sessionID, maxAge, "/", "", secure, true)

		c.Set(contextKey, ForSession(backend, sessionID))
		c.Set("session_id", sessionID)

		c.Next()
	}
}

// FromContext returns the request's session Store. It panics when the session
// middleware is not installed, which is a wiring bug rather than a runtime
// condition.
func FromContext(c *gin.Context) Store {
	return c.MustGet(contextKey).(Store)
}
