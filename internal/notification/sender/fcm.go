package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"sarkar/internal/notification/metrics"
	"sarkar/pkg/platform/circuit"
)

// DefaultFCMBaseURL is the FCM HTTP v1 endpoint host.
const DefaultFCMBaseURL = "https://fcm.googleapis.com"

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      fcmAndroid        `json:"android"`
	APNS         fcmAPNS           `json:"apns"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority string `json:"priority"`
}

type fcmAPNS struct {
	Payload map[string]any `json:"payload"`
}

type fcmError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// FCMSender posts one FCM HTTP v1 message per token. The access token is an
// OAuth2 bearer token minted outside the process.
type FCMSender struct {
	client  *resty.Client
	path    string
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// FCMOption configures an FCMSender.
type FCMOption func(*FCMSender)

func WithFCMBreaker(b *circuit.Breaker) FCMOption {
	return func(s *FCMSender) {
		s.breaker = b
	}
}

func WithFCMLogger(logger *slog.Logger) FCMOption {
	return func(s *FCMSender) {
		s.logger = logger
	}
}

func WithFCMMetrics(m *metrics.Metrics) FCMOption {
	return func(s *FCMSender) {
		s.metrics = m
	}
}

func NewFCMSender(baseURL, projectID, accessToken string, opts ...FCMOption) (*FCMSender, error) {
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id is required")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("fcm access token is required")
	}
	if baseURL == "" {
		baseURL = DefaultFCMBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	s := &FCMSender{
		client:  client,
		path:    fmt.Sprintf("/v1/projects/%s/messages:send", projectID),
		breaker: circuit.New("fcm"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send returns the number of tokens FCM accepted. Per-token rejections
// (unregistered or invalid tokens) are logged, not returned; an error means
// no token could be reached at all.
func (s *FCMSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	if !s.breaker.Allow() {
		return 0, ErrCircuitOpen
	}

	delivered := 0
	var lastErr error
	for _, token := range tokens {
		err := s.sendOne(ctx, token, title, body, data)
		if err == nil {
			delivered++
			continue
		}
		lastErr = err
		s.logger.WarnContext(ctx, "fcm delivery failed",
			"scheme_id", data["schemeId"],
			"error", err,
		)
	}
	s.metrics.AddDeliveries("fcm", delivered, len(tokens)-delivered)

	if delivered == 0 && lastErr != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.ErrorContext(ctx, "fcm circuit opened", "breaker", s.breaker.Name())
		}
		return 0, fmt.Errorf("fcm send: %w", lastErr)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "fcm circuit closed", "breaker", s.breaker.Name())
	}
	return delivered, nil
}

func (s *FCMSender) sendOne(ctx context.Context, token, title, body string, data map[string]string) error {
	var apiErr fcmError
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(fcmRequest{Message: fcmMessage{
			Token:        token,
			Notification: fcmNotification{Title: title, Body: body},
			Data:         data,
			Android:      fcmAndroid{Priority: "high"},
			APNS:         fcmAPNS{Payload: map[string]any{"aps": map[string]any{"badge": 1}}},
		}}).
		SetError(&apiErr).
		Post(s.path)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fcm status %d: %s", resp.StatusCode(), apiErr.Error.Status)
	}
	return nil
}
