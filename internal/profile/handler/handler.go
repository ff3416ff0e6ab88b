package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sarkar/internal/profile/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	"sarkar/pkg/requestcontext"
)

// Service defines the profile operations exposed over HTTP.
type Service interface {
	SaveProfile(ctx context.Context, userID string, profile models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.UserDocument, error)
	AddFamilyMember(ctx context.Context, userID string, profile models.Profile) (models.FamilyMember, error)
	ListFamilyMembers(ctx context.Context, userID string) ([]models.FamilyMember, error)
	RemoveFamilyMember(ctx context.Context, userID, memberID string) error
}

// Handler serves the authenticated user's profile and family members.
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

// Register mounts profile endpoints. The router must already require auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/profile", h.HandleSaveProfile)
	r.Get("/profile", h.HandleGetProfile)
	r.Post("/profile/family", h.HandleAddFamilyMember)
	r.Get("/profile/family", h.HandleListFamilyMembers)
	r.Delete("/profile/family/{memberId}", h.HandleRemoveFamilyMember)
}

// HandleSaveProfile handles POST /profile.
func (h *Handler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SaveProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.SaveProfile(ctx, userID, req.profile); err != nil {
		h.logFailure(ctx, "failed to save profile", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SaveProfileResponse{
		Message: "Profile saved successfully.",
		UserID:  userID,
	})
}

// HandleGetProfile handles GET /profile.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	doc, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to get profile", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleAddFamilyMember handles POST /profile/family.
func (h *Handler) HandleAddFamilyMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddFamilyMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.AddFamilyMember(ctx, userID, req.profile)
	if err != nil {
		h.logFailure(ctx, "failed to add family member", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddFamilyMemberResponse{
		Message: "Family member added.",
		Member:  member,
	})
}

// HandleListFamilyMembers handles GET /profile/family.
func (h *Handler) HandleListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	members, err := h.service.ListFamilyMembers(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to list family members", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FamilyMembersResponse{FamilyMembers: members})
}

// HandleRemoveFamilyMember handles DELETE /profile/family/{memberId}.
func (h *Handler) HandleRemoveFamilyMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	memberID := chi.URLParam(r, "memberId")
	if err := h.service.RemoveFamilyMember(ctx, userID, memberID); err != nil {
		h.logFailure(ctx, "failed to remove family member", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RemoveFamilyMemberResponse{
		Message:  "Family member removed.",
		MemberID: memberID,
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

func (h *Handler) logFailure(ctx context.Context, msg, userID string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
}
