package middleware

import (
	"log/slog"
	"net/http"

	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/security"
)

// AdminOnly guards maintenance routes with the admin gate. A disabled gate
// answers 404 so the routes look absent; a wrong token answers 403.
func AdminOnly(gate *security.AdminGate, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !gate.Enabled() {
				errorHandler.HandleError(w, r, apierrors.ErrAdminDisabled)
				return
			}

			if !gate.Allow(security.TokenFromRequest(r)) {
				logger.WarnContext(ctx, "admin token rejected",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				errorHandler.HandleError(w, r, apierrors.ErrAdminToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
