package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/reqsmith/internal/session"
)

const (
	// SessionCookie carries the browser's session id.
	SessionCookie = "reqsmith_session"
	// SessionHeader lets API clients without cookies pin a session.
	SessionHeader = "X-Session-Id"
	// RequestIDHeader is read from and echoed to every request.
	RequestIDHeader = "X-Request-Id"

	ctxRequestID = "request_id"
	ctxSession   = "session"
)

// requestLogger assigns a request id, echoes it back and logs the request
// once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// sessionBinder resolves the caller's session from the header or cookie,
// issuing a new one when neither holds a valid id.
func sessionBinder(sessions *session.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id, _ = c.Cookie(SessionCookie)
		}

		var s *session.Session
		if _, err := uuid.Parse(id); err == nil {
			s = sessions.Get(id)
		} else {
			s = sessions.New()
			log.Debug().Str("session_id", s.ID).Msg("Issued new session")
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, s.ID, 0, "/", "", secureCookie, true)
		c.Writer.Header().Set(SessionHeader, s.ID)
		c.Set(ctxSession, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}
