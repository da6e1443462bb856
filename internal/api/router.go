package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "formhook/internal/api/context"
	"formhook/internal/api/handlers"
	"formhook/internal/api/middleware"
	"formhook/internal/pkg/errors"
	"formhook/internal/platform/auth"
)

type Dependencies struct {
	AuthHandler       *handlers.AuthHandler
	SettingsHandler   *handlers.SettingsHandler
	SubmissionHandler *handlers.SubmissionHandler
	AuditHandler      *handlers.AuditHandler
	HealthHandler     *handlers.HealthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	HostToken         string
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Host form system callback
	router.POST("/api/v1/hooks/submission",
		chain(deps.SubmissionHandler.Receive, middleware.HostAuth(deps.HostToken)))

	// Authentication
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware

	// Forwarding settings
	router.GET("/api/v1/settings",
		chain(deps.SettingsHandler.Get, authMid.Handle, requireRole(auth.RoleAdmin)))
	router.PUT("/api/v1/settings",
		chain(deps.SettingsHandler.Update, authMid.Handle, requireRole(auth.RoleAdmin)))

	router.GET("/api/v1/audit",
		chain(deps.AuditHandler.List, authMid.Handle, requireRole(auth.RoleAdmin)))

	return middleware.RequestLogger(router)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Not authenticated", nil)
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
