package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sarkar/internal/eligibility"
	profilemodels "sarkar/internal/profile/models"
	"sarkar/internal/scheme/metrics"
	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/sentinel"
	"sarkar/pkg/requestcontext"
)

var tracer = otel.Tracer("sarkar/internal/scheme/service")

// Error messages returned when resolving a stored profile.
const (
	MsgUserNotFound       = "User profile not found."
	MsgPrimaryNotSet      = "Primary profile not set."
	MsgMemberIDRequired   = "memberId query parameter is required for profileType=family."
	MsgInvalidProfileType = `profileType must be "primary" or "family".`
)

// CatalogStore reads and writes the scheme catalog.
type CatalogStore interface {
	ListActiveSchemes(ctx context.Context) ([]models.Scheme, error)
	Upsert(ctx context.Context, schemes []models.Scheme) error
}

// ProfileReader loads stored user documents.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*profilemodels.UserDocument, error)
}

// Service partitions the active catalog for a profile.
type Service struct {
	catalog  CatalogStore
	profiles ProfileReader
	engine   *eligibility.Engine
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

func WithEngine(engine *eligibility.Engine) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

func New(catalog CatalogStore, profiles ProfileReader, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	s := &Service{
		catalog:  catalog,
		profiles: profiles,
		engine:   eligibility.NewEngine(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Partition evaluates every active scheme against profile at the request
// time. Output order follows the store's iteration order, which is not
// guaranteed to be stable.
func (s *Service) Partition(ctx context.Context, profile profilemodels.Profile) (models.Partition, error) {
	ctx, span := tracer.Start(ctx, "scheme.Partition")
	defer span.End()
	start := time.Now()

	now := requestcontext.Now(ctx)
	if !eligibility.IsValidPastDate(profile.DateOfBirth, now) {
		return models.Partition{}, dErrors.New(dErrors.CodeValidation, profilemodels.MsgInvalidDateOfBirth)
	}

	schemes, err := s.catalog.ListActiveSchemes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list active schemes")
		return models.Partition{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schemes")
	}

	result := models.Partition{
		Eligible: make([]models.Summary, 0, len(schemes)),
		Rejected: make([]models.Summary, 0),
	}
	for _, sc := range schemes {
		outcome, err := s.engine.Evaluate(profile, sc, now)
		if err != nil {
			return models.Partition{}, dErrors.Wrap(err, dErrors.CodeValidation, profilemodels.MsgInvalidDateOfBirth)
		}
		summary := sc.Summarize()
		if outcome.IsEligible {
			result.Eligible = append(result.Eligible, summary)
			continue
		}
		summary.Reason = outcome.Reason
		result.Rejected = append(result.Rejected, summary)
	}

	span.SetAttributes(
		attribute.Int("schemes.total", len(schemes)),
		attribute.Int("schemes.eligible", len(result.Eligible)),
	)
	s.metrics.ObservePartition(time.Since(start), len(result.Eligible), len(result.Rejected))
	return result, nil
}

// ResolveProfile loads the primary profile or a family member's profile.
func (s *Service) ResolveProfile(ctx context.Context, userID, profileType, memberID string) (profilemodels.Profile, error) {
	doc, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return profilemodels.Profile{}, dErrors.New(dErrors.CodeNotFound, MsgUserNotFound)
		}
		return profilemodels.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	switch profileType {
	case profilemodels.ProfileTypePrimary:
		if doc.PrimaryProfile == nil {
			return profilemodels.Profile{}, dErrors.New(dErrors.CodeNotFound, MsgPrimaryNotSet)
		}
		return *doc.PrimaryProfile, nil
	case profilemodels.ProfileTypeFamily:
		if memberID == "" {
			return profilemodels.Profile{}, dErrors.New(dErrors.CodeBadRequest, MsgMemberIDRequired)
		}
		member, ok := doc.FindMember(memberID)
		if !ok {
			return profilemodels.Profile{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Family member %q not found.", memberID))
		}
		return member.Profile, nil
	default:
		return profilemodels.Profile{}, dErrors.New(dErrors.CodeBadRequest, MsgInvalidProfileType)
	}
}

// PartitionForUser partitions the catalog for a stored profile of userID.
func (s *Service) PartitionForUser(ctx context.Context, userID, profileType, memberID string) (models.Partition, error) {
	profile, err := s.ResolveProfile(ctx, userID, profileType, memberID)
	if err != nil {
		return models.Partition{}, err
	}
	return s.Partition(ctx, profile)
}
