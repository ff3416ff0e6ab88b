package models

import (
	"fmt"
	"strings"
)

// Wildcards accepted in rule slots and scheme state.
const (
	AllStates     = "ALL"
	AllCategories = "ALL"
	AnyValue      = "Any"
)

// RuleSet holds the optional eligibility constraints of a scheme. A nil slot
// (or an empty category list) imposes no constraint.
type RuleSet struct {
	MinAge             *int     `json:"minAge"`
	MaxAge             *int     `json:"maxAge"`
	IncomeLimit        *float64 `json:"incomeLimit"`
	AllowedCategories  []string `json:"allowedCategories"`
	Gender             *string  `json:"gender"`
	DisabilityRequired *bool    `json:"disabilityRequired"`
	StudentOnly        *bool    `json:"studentOnly"`
	EmploymentStatus   *string  `json:"employmentStatus"`
	State              *string  `json:"state"`
}

// Validate checks the rule set once at ingestion time.
func (r RuleSet) Validate() error {
	if r.MinAge != nil && *r.MinAge < 0 {
		return fmt.Errorf("minAge must be non-negative")
	}
	if r.MaxAge != nil && *r.MaxAge < 0 {
		return fmt.Errorf("maxAge must be non-negative")
	}
	if r.MinAge != nil && r.MaxAge != nil && *r.MinAge > *r.MaxAge {
		return fmt.Errorf("minAge %d exceeds maxAge %d", *r.MinAge, *r.MaxAge)
	}
	if r.IncomeLimit != nil && *r.IncomeLimit < 0 {
		return fmt.Errorf("incomeLimit must be non-negative")
	}
	for _, c := range r.AllowedCategories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("allowedCategories contains a blank entry")
		}
	}
	for name, v := range map[string]*string{"gender": r.Gender, "employmentStatus": r.EmploymentStatus, "state": r.State} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%s must not be blank", name)
		}
	}
	return nil
}

// Scheme is one catalog entry.
type Scheme struct {
	ID               string   `json:"id"`
	SchemeName       string   `json:"schemeName"`
	Ministry         string   `json:"ministry"`
	SchemeCategory   string   `json:"schemeCategory"`
	Level            string   `json:"level"`
	State            string   `json:"state"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	Deadline         *string  `json:"deadline"` // YYYY-MM-DD
	ApplicationLink  string   `json:"applicationLink"`
	ApplicationMode  string   `json:"applicationMode"`
	Benefits         string   `json:"benefits"`
	IsActive         bool     `json:"isActive"`
	TargetGroup      []string `json:"targetGroup"`
	EligibilityRules RuleSet  `json:"eligibilityRules"`
}

// HasTargetGroup reports whether the scheme lists group in its target groups.
func (s Scheme) HasTargetGroup(group string) bool {
	for _, g := range s.TargetGroup {
		if g == group {
			return true
		}
	}
	return false
}

// Summary is the public projection of a scheme. Reason is set only on
// rejected entries.
type Summary struct {
	ID              string   `json:"id"`
	SchemeName      string   `json:"schemeName"`
	Ministry        string   `json:"ministry"`
	SchemeCategory  string   `json:"schemeCategory"`
	Level           string   `json:"level"`
	State           string   `json:"state"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Deadline        *string  `json:"deadline"`
	ApplicationLink string   `json:"applicationLink"`
	ApplicationMode string   `json:"applicationMode"`
	Benefits        string   `json:"benefits"`
	Reason          *string  `json:"reason,omitempty"`
}

// Summarize projects the public fields of s.
func (s Scheme) Summarize() Summary {
	return Summary{
		ID:              s.ID,
		SchemeName:      s.SchemeName,
		Ministry:        s.Ministry,
		SchemeCategory:  s.SchemeCategory,
		Level:           s.Level,
		State:           s.State,
		Description:     s.Description,
		Tags:            s.Tags,
		Deadline:        s.Deadline,
		ApplicationLink: s.ApplicationLink,
		ApplicationMode: s.ApplicationMode,
		Benefits:        s.Benefits,
	}
}

// Partition splits a catalog into eligible and rejected summaries.
type Partition struct {
	Eligible []Summary `json:"eligible"`
	Rejected []Summary `json:"rejected"`
}

// Filters narrows a partition after evaluation. Blank fields do not filter.
type Filters struct {
	SchemeCategory string `json:"schemeCategory"`
	State          string `json:"state"`
	Search         string `json:"search"`
}
