package server

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/matthieukhl/shopfront/internal/config"
)

const (
	ctxSessionID = "session_id"
	ctxUserID    = "user_id"
	ctxAuthErr   = "auth_error"
	ctxToken     = "token"

	sessionIDKey = "sid"
)

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// preflight answers OPTIONS requests the cors handler let through, such as
// ones sent without an Origin header.
func preflight(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.log.Error("panic recovered",
		slog.String("path", c.Request.URL.Path),
		slog.Any("panic", recovered))
	fail(c, http.StatusInternalServerError, "internal server error")
}

func newSessionStore(cfg config.SessionConfig, log *slog.Logger) *sessions.CookieStore {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		log.Warn("session.secret is not set, using an ephemeral key; carts will not survive a restart")
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(cfg.MaxAge)
	return store
}

// sessionID makes sure every request carries a session id cookie. Only the
// id lives in the cookie; session state is kept server side.
func (s *Server) sessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// a cookie that fails to decode yields a fresh session
		sess, _ := s.sessions.Get(c.Request, s.cfg.Session.CookieName)

		id, _ := sess.Values[sessionIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[sessionIDKey] = id
			if err := sess.Save(c.Request, c.Writer); err != nil {
				s.log.Warn("failed to save session", slog.Any("error", err))
			}
		}

		c.Set(ctxSessionID, id)
		c.Next()
	}
}

// bearer resolves an Authorization: Bearer token when one is sent. A bad
// token is only remembered here; handlers that need a user reject it.
func (s *Server) bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" || s.deps.Auth == nil {
			c.Next()
			return
		}

		c.Set(ctxToken, token)
		userID, err := s.deps.Auth.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Set(ctxAuthErr, err)
		} else {
			c.Set(ctxUserID, userID)
		}
		c.Next()
	}
}

// requestUser reports the user id from a bearer token, if one was sent.
func requestUser(c *gin.Context) (int64, bool, error) {
	if v, exists := c.Get(ctxAuthErr); exists {
		return 0, true, v.(error)
	}
	if v, exists := c.Get(ctxUserID); exists {
		return v.(int64), true, nil
	}
	return 0, false, nil
}

func sessionOf(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
