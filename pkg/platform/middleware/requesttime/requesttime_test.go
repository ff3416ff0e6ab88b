package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sarkar/pkg/requestcontext"
)

func TestMiddlewareWithClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return fixed
	}

	var first, second time.Time
	handler := MiddlewareWithClock(clock)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		second = requestcontext.Now(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, fixed, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestMiddleware(t *testing.T) {
	before := time.Now()
	var got time.Time
	Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = requestcontext.Now(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, got.Before(before))
	assert.False(t, got.After(time.Now()))
}
