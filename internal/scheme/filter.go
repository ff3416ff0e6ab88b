package scheme

import (
	"strings"

	"sarkar/internal/scheme/models"
	platformstrings "sarkar/pkg/platform/strings"
)

// Apply returns the summaries that pass every non-blank filter, in their
// original order. A nil filter set returns the input unchanged.
func Apply(summaries []models.Summary, filters *models.Filters) []models.Summary {
	if filters == nil {
		return summaries
	}
	category := strings.TrimSpace(filters.SchemeCategory)
	state := strings.TrimSpace(filters.State)
	search := strings.TrimSpace(filters.Search)
	if category == "" && state == "" && search == "" {
		return summaries
	}

	out := make([]models.Summary, 0, len(summaries))
	for _, s := range summaries {
		if category != "" && !strings.EqualFold(s.SchemeCategory, category) {
			continue
		}
		if state != "" && s.State != models.AllStates && !strings.EqualFold(s.State, state) {
			continue
		}
		if search != "" && !matchesSearch(s, search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesSearch(s models.Summary, term string) bool {
	if platformstrings.ContainsFold(s.SchemeName, term) || platformstrings.ContainsFold(s.Description, term) {
		return true
	}
	for _, tag := range s.Tags {
		if platformstrings.ContainsFold(tag, term) {
			return true
		}
	}
	return false
}
