package eligibility

import (
	profilemodels "sarkar/internal/profile/models"
	schememodels "sarkar/internal/scheme/models"
)

// subject bundles what a check may look at. Age is derived once per
// evaluation.
type subject struct {
	profile profilemodels.Profile
	scheme  schememodels.Scheme
	age     int
}

// check returns false when the subject fails it.
type check struct {
	name   string
	reason string
	passes func(s subject) bool
}

// checks is the evaluation order (fail-fast):
//  1. Rule set slots, in slot order
//  2. Target group guards
//
// Reordering changes which reason a multi-failure profile reports.
var checks = []check{
	{"minAge", ReasonAgeBelowMinimum, func(s subject) bool {
		r := s.scheme.EligibilityRules
		return r.MinAge == nil || s.age >= *r.MinAge
	}},
	{"maxAge", ReasonAgeAboveMaximum, func(s subject) bool {
		r := s.scheme.EligibilityRules
		return r.MaxAge == nil || s.age <= *r.MaxAge
	}},
	{"incomeLimit", ReasonIncomeExceedsLimit, func(s subject) bool {
		r := s.scheme.EligibilityRules
		return r.IncomeLimit == nil || s.profile.AnnualIncome <= *r.IncomeLimit
	}},
	{"allowedCategories", ReasonCategoryNotEligible, func(s subject) bool {
		allowed := s.scheme.EligibilityRules.AllowedCategories
		if len(allowed) == 0 {
			return true
		}
		return contains(allowed, schememodels.AllCategories) || contains(allowed, s.profile.Category)
	}},
	{"gender", ReasonGenderRestriction, func(s subject) bool {
		return matchesOrWildcard(s.scheme.EligibilityRules.Gender, schememodels.AnyValue, s.profile.Gender)
	}},
	{"disabilityRequired", ReasonDisabilityRequired, func(s subject) bool {
		r := s.scheme.EligibilityRules
		return r.DisabilityRequired == nil || !*r.DisabilityRequired || s.profile.IsDisabled
	}},
	{"studentOnly", ReasonStudentRequired, func(s subject) bool {
		r := s.scheme.EligibilityRules
		return r.StudentOnly == nil || !*r.StudentOnly || s.profile.IsStudent
	}},
	{"employmentStatus", ReasonEmploymentMismatch, func(s subject) bool {
		return matchesOrWildcard(s.scheme.EligibilityRules.EmploymentStatus, schememodels.AnyValue, s.profile.EmploymentStatus)
	}},
	{"state", ReasonStateRestriction, func(s subject) bool {
		return matchesOrWildcard(s.scheme.EligibilityRules.State, schememodels.AllStates, s.profile.State)
	}},

	{"pensionCategory", ReasonSeniorCitizensOnly, func(s subject) bool {
		return s.scheme.SchemeCategory != CategoryPension || s.age >= SeniorCitizenMinAge
	}},
	{"seniorCitizens", ReasonSeniorCitizensOnly, func(s subject) bool {
		return !s.scheme.HasTargetGroup(TargetSeniorCitizens) || s.age >= SeniorCitizenMinAge
	}},
	{"students", ReasonStudentRequired, func(s subject) bool {
		return !s.scheme.HasTargetGroup(TargetStudents) || s.profile.IsStudent
	}},
	{"farmers", ReasonFarmersOnly, func(s subject) bool {
		return !s.scheme.HasTargetGroup(TargetFarmers) || s.profile.OwnsLand()
	}},
	{"workingWomen", ReasonGenderRestriction, func(s subject) bool {
		return !s.scheme.HasTargetGroup(TargetWorkingWomen) || s.profile.Gender == GenderFemale
	}},
}

func matchesOrWildcard(rule *string, wildcard, value string) bool {
	return rule == nil || *rule == wildcard || *rule == value
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
