package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	profilemodels "sarkar/internal/profile/models"
	"sarkar/internal/scheme"
	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	"sarkar/pkg/requestcontext"
)

// MsgProfileTypeRequired is returned when GET /schemes has no profileType.
const MsgProfileTypeRequired = `Query parameter "profileType" is required.`

// Service defines the partition operations exposed over HTTP.
type Service interface {
	Partition(ctx context.Context, profile profilemodels.Profile) (models.Partition, error)
	PartitionForUser(ctx context.Context, userID, profileType, memberID string) (models.Partition, error)
}

// Handler serves scheme eligibility endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts scheme endpoints. The router must already require auth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/schemes", h.HandleListForProfile)
	r.Get("/schemes/eligible", h.HandleListForPrimary)
	r.Post("/schemes/eligible", h.HandleCheckEligibility)
}

// HandleListForProfile handles GET /schemes?profileType=primary|family&memberId=.
func (h *Handler) HandleListForProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	query := r.URL.Query()
	profileType := query.Get("profileType")
	if profileType == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, MsgProfileTypeRequired))
		return
	}

	start := time.Now()
	result, err := h.service.PartitionForUser(ctx, userID, profileType, query.Get("memberId"))
	if err != nil {
		h.logFailure(ctx, "failed to partition schemes", userID, err)
		httputil.WriteError(w, err)
		return
	}
	h.logPartition(ctx, userID, profileType, result, start)
	httputil.WriteJSON(w, http.StatusOK, PartitionResponse{
		Eligible: result.Eligible,
		Rejected: result.Rejected,
	})
}

// HandleListForPrimary handles GET /schemes/eligible.
func (h *Handler) HandleListForPrimary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.PartitionForUser(ctx, userID, profilemodels.ProfileTypePrimary, "")
	if err != nil {
		h.logFailure(ctx, "failed to partition schemes", userID, err)
		httputil.WriteError(w, err)
		return
	}
	h.logPartition(ctx, userID, profilemodels.ProfileTypePrimary, result, start)
	httputil.WriteJSON(w, http.StatusOK, PrimaryPartitionResponse{
		UserID:        userID,
		TotalEligible: len(result.Eligible),
		TotalRejected: len(result.Rejected),
		Eligible:      result.Eligible,
		Rejected:      result.Rejected,
	})
}

// HandleCheckEligibility handles POST /schemes/eligible. Filters narrow both
// sides after evaluation.
func (h *Handler) HandleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CheckEligibilityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Partition(ctx, req.profile)
	if err != nil {
		h.logFailure(ctx, "failed to check eligibility", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PartitionResponse{
		Eligible: scheme.Apply(result.Eligible, req.Filters),
		Rejected: scheme.Apply(result.Rejected, req.Filters),
	})
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (string, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return userID, true
}

func (h *Handler) logPartition(ctx context.Context, userID, profileType string, result models.Partition, start time.Time) {
	h.logger.InfoContext(ctx, "schemes partitioned",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"profile_type", profileType,
		"eligible", len(result.Eligible),
		"rejected", len(result.Rejected),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (h *Handler) logFailure(ctx context.Context, msg, userID string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
}
