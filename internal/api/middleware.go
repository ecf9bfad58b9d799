package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"daily-close/internal/errvalues"
)

type contextKey string

const (
	requestIDContextKey contextKey = "Request-ID"
	loggerContextKey    contextKey = "Logger"
	userContextKey      contextKey = "User"
)

func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) SettingUpLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default()
		if reqID, ok := r.Context().Value(requestIDContextKey).(string); ok && reqID != "" {
			logger = logger.With(slog.String("request_id", reqID))
		}
		logger = logger.With(slog.String("from", r.RemoteAddr), slog.String("path", r.URL.Path))
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware lets through requests carrying a valid session cookie and
// redirects everything else to the login form.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := s.sessionUser(r)
		if err != nil {
			GetLoggerFromCtx(r.Context()).Info("unauthenticated request", slog.String("reason", err.Error()))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), email)))
	})
}

// ManifestAuthMiddleware additionally accepts the configured bearer token, so
// external clients can add tasks without a browser session.
func (s *Server) ManifestAuthMiddleware(next http.Handler) http.Handler {
	sessionGate := s.AuthMiddleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.manifestToken != "" {
			if token, err := GetTokenFromHeader(r); err == nil &&
				subtle.ConstantTimeCompare([]byte(token), []byte(s.manifestToken)) == 1 {
				next.ServeHTTP(w, r.WithContext(withUser(r.Context(), s.authService.Owner())))
				return
			}
		}
		sessionGate.ServeHTTP(w, r)
	})
}

func (s *Server) sessionUser(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", errvalues.ErrInvalidToken
	}
	claims, err := s.sessions.Parse(cookie.Value)
	if err != nil {
		return "", err
	}
	if claims.Email != s.authService.Owner() {
		return "", errvalues.ErrInvalidToken
	}
	return claims.Email, nil
}

func withUser(ctx context.Context, email string) context.Context {
	logger := GetLoggerFromCtx(ctx).With(slog.String("user", email))
	ctx = context.WithValue(ctx, loggerContextKey, logger)
	return context.WithValue(ctx, userContextKey, email)
}

func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if ok {
		return logger
	}
	return slog.Default()
}

func GetUserFromCtx(ctx context.Context) string {
	email, _ := ctx.Value(userContextKey).(string)
	return email
}

func GetTokenFromHeader(r *http.Request) (string, error) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", errvalues.ErrInvalidToken
	}
	parts := strings.Split(token, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errvalues.ErrInvalidToken
	}
	return parts[1], nil
}
