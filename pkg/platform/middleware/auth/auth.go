package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	request "sarkar/pkg/platform/middleware/request"
	"sarkar/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns the subject it was
// issued to. Issuance happens elsewhere.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the subset of token claims the API relies on.
type Claims struct {
	UserID string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject as the request's user ID.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized: missing or malformed token."))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil || claims == nil || claims.UserID == "" {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized: invalid or expired token."))
				return
			}

			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
