package sender

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarkar/pkg/platform/circuit"
)

type fcmServer struct {
	mu       sync.Mutex
	requests []fcmRequest
	auth     []string
	reject   map[string]int
}

func (f *fcmServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req fcmRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	status := f.reject[req.Message.Token]
	f.mu.Unlock()

	if r.URL.Path != "/v1/projects/sarkar-test/messages:send" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"name":"projects/sarkar-test/messages/1"}`))
}

func newTestFCM(t *testing.T, f *fcmServer, opts ...FCMOption) *FCMSender {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	opts = append([]FCMOption{WithFCMLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s, err := NewFCMSender(srv.URL, "sarkar-test", "access-token", opts...)
	require.NoError(t, err)
	return s
}

func TestFCMSender(t *testing.T) {
	data := map[string]string{"schemeId": "nsp", "type": "DEADLINE_REMINDER"}

	t.Run("one message per token with bearer auth", func(t *testing.T) {
		f := &fcmServer{}
		s := newTestFCM(t, f)

		n, err := s.Send(context.Background(), []string{"tok-a", "tok-b"}, "Scheme Deadline Approaching", "body", data)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.Len(t, f.requests, 2)
		assert.Equal(t, "tok-a", f.requests[0].Message.Token)
		assert.Equal(t, "Scheme Deadline Approaching", f.requests[0].Message.Notification.Title)
		assert.Equal(t, "DEADLINE_REMINDER", f.requests[0].Message.Data["type"])
		assert.Equal(t, "high", f.requests[0].Message.Android.Priority)
		assert.Equal(t, "Bearer access-token", f.auth[0])
	})

	t.Run("rejected tokens reduce the count", func(t *testing.T) {
		f := &fcmServer{reject: map[string]int{"stale": http.StatusNotFound}}
		s := newTestFCM(t, f)

		n, err := s.Send(context.Background(), []string{"stale", "fresh"}, "t", "b", data)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("all tokens rejected is an error", func(t *testing.T) {
		f := &fcmServer{reject: map[string]int{"stale": http.StatusNotFound}}
		s := newTestFCM(t, f)

		n, err := s.Send(context.Background(), []string{"stale"}, "t", "b", data)
		require.Error(t, err)
		assert.Zero(t, n)
	})

	t.Run("open breaker skips the upstream", func(t *testing.T) {
		f := &fcmServer{reject: map[string]int{"stale": http.StatusNotFound}}
		s := newTestFCM(t, f, WithFCMBreaker(circuit.New("fcm", circuit.WithFailureThreshold(1))))

		_, err := s.Send(context.Background(), []string{"stale"}, "t", "b", data)
		require.Error(t, err)

		_, err = s.Send(context.Background(), []string{"fresh"}, "t", "b", data)
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.Len(t, f.requests, 1)
	})
}

func TestNewFCMSender(t *testing.T) {
	_, err := NewFCMSender("", "", "token")
	assert.Error(t, err)
	_, err = NewFCMSender("", "project", "")
	assert.Error(t, err)

	s, err := NewFCMSender("", "project", "token")
	require.NoError(t, err)
	assert.Equal(t, "/v1/projects/project/messages:send", s.path)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	n, err := s.Send(context.Background(), []string{"a", "b", "c"}, "t", "b", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
