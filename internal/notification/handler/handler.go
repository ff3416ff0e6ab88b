package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sarkar/internal/profile/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	"sarkar/pkg/requestcontext"
)

// Service registers push tokens for the authenticated user.
type Service interface {
	RegisterDeviceToken(ctx context.Context, userID, token string) (models.TokenOutcome, error)
}

// RegisterTokenRequest is the body of POST /notifications/register-token.
type RegisterTokenRequest struct {
	Token string `json:"token"`
}

// Validate implements httputil.Validatable.
func (r *RegisterTokenRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, `Field "token" is required and must be a non-empty string.`)
	}
	return nil
}

type RegisterTokenResponse struct {
	Message string              `json:"message"`
	Outcome models.TokenOutcome `json:"outcome"`
}

var outcomeMessages = map[models.TokenOutcome]string{
	models.TokenAdded:   "FCM token registered successfully.",
	models.TokenExists:  "FCM token already registered.",
	models.TokenEvicted: "FCM token registered. Oldest token removed to stay within the 5-token limit.",
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts notification endpoints. The router must already require auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/notifications/register-token", h.HandleRegisterToken)
}

// HandleRegisterToken handles POST /notifications/register-token.
func (h *Handler) HandleRegisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.RegisterDeviceToken(ctx, userID, req.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register device token",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RegisterTokenResponse{
		Message: outcomeMessages[outcome],
		Outcome: outcome,
	})
}
