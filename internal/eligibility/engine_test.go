package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	profilemodels "sarkar/internal/profile/models"
	schememodels "sarkar/internal/scheme/models"
)

// =============================================================================
// Eligibility Engine Test Suite
// =============================================================================
// Reason strings and their order are consumed by clients, so each rule and
// each multi-failure combination is pinned here.

type EngineSuite struct {
	suite.Suite
	now     time.Time
	profile profilemodels.Profile
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	s.profile = profilemodels.Profile{
		Name:             "Arjun",
		DateOfBirth:      "2003-06-15", // 22 at s.now
		AnnualIncome:     150000,
		Category:         "OBC",
		State:            "Tamil Nadu",
		Gender:           "Male",
		IsStudent:        true,
		EmploymentStatus: "Unemployed",
		IsDisabled:       false,
		LandOwnership:    boolPtr(false),
	}
}

func (s *EngineSuite) evaluate(p profilemodels.Profile, sc schememodels.Scheme) Result {
	result, err := Evaluate(p, sc, s.now)
	s.Require().NoError(err)
	return result
}

func (s *EngineSuite) assertEligible(result Result) {
	s.True(result.IsEligible)
	s.Nil(result.Reason)
}

func (s *EngineSuite) assertRejected(result Result, reason string) {
	s.False(result.IsEligible)
	s.Require().NotNil(result.Reason)
	s.Equal(reason, *result.Reason)
}

func withRules(r schememodels.RuleSet) schememodels.Scheme {
	if r.State == nil {
		r.State = strPtr("ALL")
	}
	return schememodels.Scheme{ID: "s1", SchemeName: "Test", EligibilityRules: r}
}

// =============================================================================
// Scenarios
// =============================================================================

func (s *EngineSuite) TestScenarios() {
	s.Run("within age range is eligible", func() {
		s.assertEligible(s.evaluate(s.profile, withRules(schememodels.RuleSet{MinAge: intPtr(18), MaxAge: intPtr(25)})))
	})

	s.Run("below minimum age", func() {
		s.assertRejected(s.evaluate(s.profile, withRules(schememodels.RuleSet{MinAge: intPtr(25)})), ReasonAgeBelowMinimum)
	})

	s.Run("pension requires senior citizen", func() {
		pension := withRules(schememodels.RuleSet{})
		pension.SchemeCategory = "Pension"
		s.assertRejected(s.evaluate(s.profile, pension), ReasonSeniorCitizensOnly)

		senior := s.profile
		senior.DateOfBirth = "1960-01-01"
		s.assertEligible(s.evaluate(senior, pension))
	})
}

// =============================================================================
// Phase 1: rule set slots
// =============================================================================

func (s *EngineSuite) TestRuleSlots() {
	tests := []struct {
		name   string
		mutate func(p *profilemodels.Profile)
		rules  schememodels.RuleSet
		reason string // empty means eligible
	}{
		{"above maximum age", nil, schememodels.RuleSet{MaxAge: intPtr(20)}, ReasonAgeAboveMaximum},
		{"age equal to bounds passes", nil, schememodels.RuleSet{MinAge: intPtr(22), MaxAge: intPtr(22)}, ""},
		{"income within limit", nil, schememodels.RuleSet{IncomeLimit: floatPtr(200000)}, ""},
		{"income equal to limit", nil, schememodels.RuleSet{IncomeLimit: floatPtr(150000)}, ""},
		{"income exceeds limit", nil, schememodels.RuleSet{IncomeLimit: floatPtr(100000)}, ReasonIncomeExceedsLimit},
		{"category listed", nil, schememodels.RuleSet{AllowedCategories: []string{"OBC", "SC"}}, ""},
		{"category not listed", nil, schememodels.RuleSet{AllowedCategories: []string{"SC", "ST"}}, ReasonCategoryNotEligible},
		{"gender matches", nil, schememodels.RuleSet{Gender: strPtr("Male")}, ""},
		{"gender differs", nil, schememodels.RuleSet{Gender: strPtr("Female")}, ReasonGenderRestriction},
		{"disability required", nil, schememodels.RuleSet{DisabilityRequired: boolPtr(true)}, ReasonDisabilityRequired},
		{"disability false is no constraint", nil, schememodels.RuleSet{DisabilityRequired: boolPtr(false)}, ""},
		{"student only passes for student", nil, schememodels.RuleSet{StudentOnly: boolPtr(true)}, ""},
		{"student only fails for non student", func(p *profilemodels.Profile) { p.IsStudent = false }, schememodels.RuleSet{StudentOnly: boolPtr(true)}, ReasonStudentRequired},
		{"employment matches", nil, schememodels.RuleSet{EmploymentStatus: strPtr("Unemployed")}, ""},
		{"employment differs", nil, schememodels.RuleSet{EmploymentStatus: strPtr("Employed")}, ReasonEmploymentMismatch},
		{"state matches", nil, schememodels.RuleSet{State: strPtr("Tamil Nadu")}, ""},
		{"state differs", nil, schememodels.RuleSet{State: strPtr("Kerala")}, ReasonStateRestriction},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			p := s.profile
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			result := s.evaluate(p, withRules(tt.rules))
			if tt.reason == "" {
				s.assertEligible(result)
				return
			}
			s.assertRejected(result, tt.reason)
		})
	}
}

func (s *EngineSuite) TestWildcards() {
	unconstrained := schememodels.Scheme{ID: "open"}

	s.Run("wildcards match no constraint", func() {
		cases := []schememodels.RuleSet{
			{AllowedCategories: []string{"ALL"}},
			{State: strPtr("ALL")},
			{Gender: strPtr("Any")},
			{EmploymentStatus: strPtr("Any")},
			{AllowedCategories: []string{}},
		}
		want := s.evaluate(s.profile, unconstrained)
		for _, rules := range cases {
			s.Equal(want, s.evaluate(s.profile, schememodels.Scheme{ID: "w", EligibilityRules: rules}))
		}
	})

	s.Run("wildcards are case sensitive literals", func() {
		s.assertRejected(s.evaluate(s.profile, schememodels.Scheme{EligibilityRules: schememodels.RuleSet{State: strPtr("all")}}), ReasonStateRestriction)
	})

	s.Run("every slot unset is eligible for any valid profile", func() {
		for _, dob := range []string{"2026-02-28", "1930-01-01", "2003-06-15"} {
			p := profilemodels.Profile{DateOfBirth: dob}
			s.assertEligible(s.evaluate(p, unconstrained))
		}
	})
}

// =============================================================================
// Phase 2: target group guards
// =============================================================================

func (s *EngineSuite) TestTargetGroupGuards() {
	group := func(g string) schememodels.Scheme {
		sc := withRules(schememodels.RuleSet{})
		sc.TargetGroup = []string{g}
		return sc
	}
	senior := s.profile
	senior.DateOfBirth = "1960-01-01"

	s.Run("senior citizens", func() {
		s.assertRejected(s.evaluate(s.profile, group(TargetSeniorCitizens)), ReasonSeniorCitizensOnly)
		s.assertEligible(s.evaluate(senior, group(TargetSeniorCitizens)))
	})

	s.Run("students", func() {
		s.assertEligible(s.evaluate(s.profile, group(TargetStudents)))
		nonStudent := s.profile
		nonStudent.IsStudent = false
		s.assertRejected(s.evaluate(nonStudent, group(TargetStudents)), ReasonStudentRequired)
	})

	s.Run("farmers need land", func() {
		s.assertRejected(s.evaluate(s.profile, group(TargetFarmers)), ReasonFarmersOnly)
		landless := s.profile
		landless.LandOwnership = nil
		s.assertRejected(s.evaluate(landless, group(TargetFarmers)), ReasonFarmersOnly)
		owner := s.profile
		owner.LandOwnership = boolPtr(true)
		s.assertEligible(s.evaluate(owner, group(TargetFarmers)))
	})

	s.Run("working women", func() {
		s.assertRejected(s.evaluate(s.profile, group(TargetWorkingWomen)), ReasonGenderRestriction)
		woman := s.profile
		woman.Gender = "Female"
		s.assertEligible(s.evaluate(woman, group(TargetWorkingWomen)))
	})
}

// =============================================================================
// Ordering
// =============================================================================

func (s *EngineSuite) TestFirstFailureWins() {
	s.Run("minimum age reported before income", func() {
		rules := schememodels.RuleSet{MinAge: intPtr(30), IncomeLimit: floatPtr(1000)}
		s.assertRejected(s.evaluate(s.profile, withRules(rules)), ReasonAgeBelowMinimum)
	})

	s.Run("state reported before target group guard", func() {
		sc := withRules(schememodels.RuleSet{State: strPtr("Kerala")})
		sc.TargetGroup = []string{TargetFarmers}
		s.assertRejected(s.evaluate(s.profile, sc), ReasonStateRestriction)
	})

	s.Run("pension guard reported before working women", func() {
		sc := withRules(schememodels.RuleSet{})
		sc.SchemeCategory = CategoryPension
		sc.TargetGroup = []string{TargetWorkingWomen, TargetFarmers}
		s.assertRejected(s.evaluate(s.profile, sc), ReasonSeniorCitizensOnly)
	})

	s.Run("farmers guard reported before working women", func() {
		sc := withRules(schememodels.RuleSet{})
		sc.TargetGroup = []string{TargetWorkingWomen, TargetFarmers}
		s.assertRejected(s.evaluate(s.profile, sc), ReasonFarmersOnly)
	})
}

// =============================================================================
// Engine wrapper
// =============================================================================

func (s *EngineSuite) TestEngine() {
	engine := NewEngine(WithClock(func() time.Time { return s.now }))

	s.Run("uses the injected clock", func() {
		s.Equal(s.now, engine.Now())
	})

	s.Run("invalid date of birth is an error, not a result", func() {
		p := s.profile
		p.DateOfBirth = "2030-01-01"
		_, err := engine.Evaluate(p, withRules(schememodels.RuleSet{}), engine.Now())
		s.ErrorIs(err, ErrInvalidDateOfBirth)
	})

	s.Run("delegates to Evaluate", func() {
		result, err := engine.Evaluate(s.profile, withRules(schememodels.RuleSet{MaxAge: intPtr(20)}), engine.Now())
		s.Require().NoError(err)
		s.assertRejected(result, ReasonAgeAboveMaximum)
	})
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
