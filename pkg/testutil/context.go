package testutil

import (
	"net/http"
	"time"

	"sarkar/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithTime pins the request-scoped clock so age and deadline math is fixed.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithAuth adds a user ID and a fixed request time, the typical state of an
// authenticated request in handler tests.
func WithAuth(req *http.Request, userID string, now time.Time) *http.Request {
	return WithTime(WithUserID(req, userID), now)
}
