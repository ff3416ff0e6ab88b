package service

import (
	"context"
	"fmt"
	"strings"

	"sarkar/internal/eligibility"
	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
	platformstrings "sarkar/pkg/platform/strings"
)

// Ingest validates every scheme and writes the batch. The first invalid
// scheme rejects the whole batch; rule sets are never re-validated later.
func (s *Service) Ingest(ctx context.Context, schemes []models.Scheme) (int, error) {
	prepared := make([]models.Scheme, 0, len(schemes))
	seen := make(map[string]struct{}, len(schemes))
	for i, sc := range schemes {
		sc, err := prepareScheme(sc)
		if err != nil {
			return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("scheme #%d (%s): %s", i+1, sc.ID, err))
		}
		if _, dup := seen[sc.ID]; dup {
			return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("scheme #%d (%s): duplicate id", i+1, sc.ID))
		}
		seen[sc.ID] = struct{}{}
		prepared = append(prepared, sc)
	}

	if err := s.catalog.Upsert(ctx, prepared); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store schemes")
	}
	s.metrics.AddIngested(len(prepared))
	s.logger.InfoContext(ctx, "catalog ingested", "schemes", len(prepared))
	return len(prepared), nil
}

func prepareScheme(sc models.Scheme) (models.Scheme, error) {
	sc.ID = strings.TrimSpace(sc.ID)
	sc.SchemeName = strings.TrimSpace(sc.SchemeName)
	sc.State = strings.TrimSpace(sc.State)
	if sc.ID == "" {
		return sc, fmt.Errorf("id is required")
	}
	if sc.SchemeName == "" {
		return sc, fmt.Errorf("schemeName is required")
	}
	if sc.State == "" {
		sc.State = models.AllStates
	}
	if sc.Deadline != nil {
		if _, err := eligibility.ParseDate(*sc.Deadline); err != nil {
			return sc, fmt.Errorf("deadline: %w", err)
		}
	}
	if err := sc.EligibilityRules.Validate(); err != nil {
		return sc, err
	}
	sc.Tags = platformstrings.DedupeAndTrim(sc.Tags)
	sc.TargetGroup = platformstrings.DedupeAndTrim(sc.TargetGroup)
	sc.EligibilityRules.AllowedCategories = platformstrings.DedupeAndTrim(sc.EligibilityRules.AllowedCategories)
	return sc, nil
}
