package models

import (
	"fmt"
	"strings"

	dErrors "sarkar/pkg/domain-errors"
)

// Allowed values for primary profiles. Family members accept free strings.
var (
	Genders            = []string{"Male", "Female", "Other"}
	Categories         = []string{"SC", "ST", "OBC", "General"}
	EmploymentStatuses = []string{"Employed", "Unemployed", "Self-Employed"}
)

// MsgInvalidDateOfBirth is shared by every profile-shaped input.
const MsgInvalidDateOfBirth = "Missing or invalid field: dateOfBirth (YYYY-MM-DD, must be in the past)"

// ProfileInput is a decoded profile payload. Pointer fields distinguish a
// missing field from a zero value.
type ProfileInput struct {
	Name             *string  `json:"name"`
	DateOfBirth      *string  `json:"dateOfBirth"`
	Gender           *string  `json:"gender"`
	AnnualIncome     *float64 `json:"annualIncome"`
	Category         *string  `json:"category"`
	State            *string  `json:"state"`
	IsStudent        *bool    `json:"isStudent"`
	EmploymentStatus *string  `json:"employmentStatus"`
	IsDisabled       *bool    `json:"isDisabled"`
	EducationLevel   *string  `json:"educationLevel"`
	LandOwnership    *bool    `json:"landOwnership"`
}

// PrimaryProfile validates the input as the account holder's profile.
// The date of birth is only checked for presence here; callers check it is
// in the past against the request time.
func (in *ProfileInput) PrimaryProfile() (Profile, error) {
	if err := requireString("name", in.Name); err != nil {
		return Profile{}, err
	}
	if in.DateOfBirth == nil || *in.DateOfBirth == "" {
		return Profile{}, invalid(MsgInvalidDateOfBirth)
	}
	if err := requireOneOf("gender", in.Gender, Genders); err != nil {
		return Profile{}, err
	}
	if err := requireIncome(in.AnnualIncome); err != nil {
		return Profile{}, err
	}
	if err := requireOneOf("category", in.Category, Categories); err != nil {
		return Profile{}, err
	}
	if err := requireString("state", in.State); err != nil {
		return Profile{}, err
	}
	if in.IsStudent == nil {
		return Profile{}, invalid(`Field "isStudent" must be a boolean`)
	}
	if err := requireOneOf("employmentStatus", in.EmploymentStatus, EmploymentStatuses); err != nil {
		return Profile{}, err
	}
	if in.IsDisabled == nil {
		return Profile{}, invalid(`Field "isDisabled" must be a boolean`)
	}
	p := in.profile()
	p.EducationLevel = in.EducationLevel
	p.LandOwnership = in.LandOwnership
	return p, nil
}

// MemberProfile validates the input as a family member. Enumerated fields
// accept any non-empty string.
func (in *ProfileInput) MemberProfile() (Profile, error) {
	if err := requireString("name", in.Name); err != nil {
		return Profile{}, err
	}
	if in.DateOfBirth == nil || *in.DateOfBirth == "" {
		return Profile{}, invalid(MsgInvalidDateOfBirth)
	}
	if err := requireString("gender", in.Gender); err != nil {
		return Profile{}, err
	}
	if err := requireIncome(in.AnnualIncome); err != nil {
		return Profile{}, err
	}
	if err := requireString("category", in.Category); err != nil {
		return Profile{}, err
	}
	if err := requireString("state", in.State); err != nil {
		return Profile{}, err
	}
	if in.IsStudent == nil {
		return Profile{}, invalid(`Field "isStudent" must be a boolean`)
	}
	if err := requireString("employmentStatus", in.EmploymentStatus); err != nil {
		return Profile{}, err
	}
	if in.IsDisabled == nil {
		return Profile{}, invalid(`Field "isDisabled" must be a boolean`)
	}
	return in.profile(), nil
}

// EvaluableProfile checks only the fields the engine reads. Used by the
// stateless eligibility check, which never stores the profile.
func (in *ProfileInput) EvaluableProfile() (Profile, error) {
	required := []struct {
		name    string
		present bool
	}{
		{"dateOfBirth", in.DateOfBirth != nil},
		{"annualIncome", in.AnnualIncome != nil},
		{"category", in.Category != nil},
		{"state", in.State != nil},
		{"gender", in.Gender != nil},
		{"isStudent", in.IsStudent != nil},
		{"employmentStatus", in.EmploymentStatus != nil},
		{"isDisabled", in.IsDisabled != nil},
	}
	for _, f := range required {
		if !f.present {
			return Profile{}, invalid("Missing required profile field: " + f.name)
		}
	}
	p := Profile{
		DateOfBirth:      *in.DateOfBirth,
		Gender:           *in.Gender,
		AnnualIncome:     *in.AnnualIncome,
		Category:         *in.Category,
		State:            *in.State,
		IsStudent:        *in.IsStudent,
		EmploymentStatus: *in.EmploymentStatus,
		IsDisabled:       *in.IsDisabled,
		EducationLevel:   in.EducationLevel,
		LandOwnership:    in.LandOwnership,
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	return p, nil
}

func (in *ProfileInput) profile() Profile {
	return Profile{
		Name:             strings.TrimSpace(*in.Name),
		DateOfBirth:      *in.DateOfBirth,
		Gender:           *in.Gender,
		AnnualIncome:     *in.AnnualIncome,
		Category:         *in.Category,
		State:            strings.TrimSpace(*in.State),
		IsStudent:        *in.IsStudent,
		EmploymentStatus: *in.EmploymentStatus,
		IsDisabled:       *in.IsDisabled,
	}
}

func requireString(field string, v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return invalid(fmt.Sprintf("Missing or invalid field: %s (string required)", field))
	}
	return nil
}

func requireOneOf(field string, v *string, allowed []string) error {
	if v != nil {
		for _, a := range allowed {
			if *v == a {
				return nil
			}
		}
	}
	return invalid(fmt.Sprintf("Field %q must be one of: %s", field, strings.Join(allowed, ", ")))
}

func requireIncome(v *float64) error {
	if v == nil || *v < 0 {
		return invalid(`Field "annualIncome" must be a non-negative number`)
	}
	return nil
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}
