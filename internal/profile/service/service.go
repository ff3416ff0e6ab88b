package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sarkar/internal/eligibility"
	"sarkar/internal/profile/metrics"
	"sarkar/internal/profile/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/sentinel"
	"sarkar/pkg/requestcontext"
)

// Store persists user documents. Writes create the document when missing.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserDocument, error)
	SetPrimaryProfile(ctx context.Context, userID string, profile models.Profile) error
	AddFamilyMember(ctx context.Context, userID string, member models.FamilyMember) error
	RemoveFamilyMember(ctx context.Context, userID, memberID string) (bool, error)
	SetDeviceTokens(ctx context.Context, userID string, tokens []string) error
}

// Service manages a user's primary profile, family members and push tokens.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator replaces UUID generation for family member IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SaveProfile overwrites the primary profile, creating the user document on
// first write. Family members and tokens are untouched.
func (s *Service) SaveProfile(ctx context.Context, userID string, profile models.Profile) error {
	if err := checkDateOfBirth(ctx, profile); err != nil {
		return err
	}
	if err := s.store.SetPrimaryProfile(ctx, userID, profile); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	s.metrics.IncrementProfilesSaved()
	s.logger.InfoContext(ctx, "primary profile saved",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
	)
	return nil
}

// GetProfile returns the stored document.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.UserDocument, error) {
	doc, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Profile not found.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return doc, nil
}

// AddFamilyMember assigns a new ID and appends the member.
func (s *Service) AddFamilyMember(ctx context.Context, userID string, profile models.Profile) (models.FamilyMember, error) {
	if err := checkDateOfBirth(ctx, profile); err != nil {
		return models.FamilyMember{}, err
	}
	member := models.FamilyMember{ID: s.newID(), Profile: profile}
	if err := s.store.AddFamilyMember(ctx, userID, member); err != nil {
		return models.FamilyMember{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add family member")
	}
	s.metrics.IncrementMembersAdded()
	s.logger.InfoContext(ctx, "family member added",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"member_id", member.ID,
	)
	return member, nil
}

// ListFamilyMembers returns an empty list when the user has no document.
func (s *Service) ListFamilyMembers(ctx context.Context, userID string) ([]models.FamilyMember, error) {
	doc, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []models.FamilyMember{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family members")
	}
	if doc.FamilyMembers == nil {
		return []models.FamilyMember{}, nil
	}
	return doc.FamilyMembers, nil
}

func (s *Service) RemoveFamilyMember(ctx context.Context, userID, memberID string) error {
	removed, err := s.store.RemoveFamilyMember(ctx, userID, memberID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove family member")
	}
	if !removed {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Family member %q not found.", memberID))
	}
	s.metrics.IncrementMembersRemoved()
	return nil
}

// RegisterDeviceToken stores a push token. At most MaxDeviceTokens are kept;
// registering past the limit evicts the oldest.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID, token string) (models.TokenOutcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", dErrors.New(dErrors.CodeValidation, `Field "token" is required and must be a non-empty string.`)
	}

	var tokens []string
	doc, err := s.store.Get(ctx, userID)
	switch {
	case err == nil:
		tokens = doc.DeviceTokens
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load device tokens")
	}

	next, outcome := appendToken(tokens, token)
	if outcome != models.TokenExists {
		if err := s.store.SetDeviceTokens(ctx, userID, next); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store device token")
		}
	}
	s.metrics.IncrementTokenRegistration(string(outcome))
	s.logger.InfoContext(ctx, "device token registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"outcome", outcome,
	)
	return outcome, nil
}

func appendToken(tokens []string, token string) ([]string, models.TokenOutcome) {
	for _, t := range tokens {
		if t == token {
			return tokens, models.TokenExists
		}
	}
	next := append(append([]string(nil), tokens...), token)
	if len(next) > models.MaxDeviceTokens {
		return next[len(next)-models.MaxDeviceTokens:], models.TokenEvicted
	}
	return next, models.TokenAdded
}

func checkDateOfBirth(ctx context.Context, profile models.Profile) error {
	if !eligibility.IsValidPastDate(profile.DateOfBirth, requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeValidation, models.MsgInvalidDateOfBirth)
	}
	return nil
}
