package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/traindiary/backend/internal/auth"
	"github.com/traindiary/backend/internal/telemetry/tracing"
	"github.com/traindiary/backend/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// AuthTokenHeader carries the session token issued at login.
const AuthTokenHeader = "X-TD-TOKEN"

type userIDContextKey struct{}

// UserIDFromContext returns the authenticated user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(int)
	return userID, ok
}

// ContextWithUserID is used by handler tests to fake an authenticated request.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

type sessionChecker interface {
	Session(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddlewareHandler struct {
	sessions     sessionChecker
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(sessions sessionChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		sessions: sessions,
		allowedPaths: map[string]bool{
			"/":           true,
			"/version":    true,
			"/a/register": true,
			"/a/login":    true,
			"/a/logout":   true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Tracef("[missing token] [auth middleware] unauthorized => %s [ip: %s]", r.URL.Path, reqIp)
				span.SetStatus(codes.Error, "missing-token")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			session, err := h.sessions.Session(ctx, authToken)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionNotFound) {
					log.Errorf("[auth middleware] session check failed => %s: %s", r.URL.Path, err)
				}
				span.SetStatus(codes.Error, "invalid-token")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(
				ContextWithUserID(ctx, session.UserID),
			))
		})
	}
}
