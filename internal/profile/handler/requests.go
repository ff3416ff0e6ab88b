package handler

import (
	"sarkar/internal/profile/models"
)

// SaveProfileRequest is the body of POST /profile.
type SaveProfileRequest struct {
	models.ProfileInput

	profile models.Profile
}

// Validate checks the primary profile enumerations.
// Implements httputil.Validatable.
func (r *SaveProfileRequest) Validate() error {
	p, err := r.PrimaryProfile()
	if err != nil {
		return err
	}
	r.profile = p
	return nil
}

// AddFamilyMemberRequest is the body of POST /profile/family.
type AddFamilyMemberRequest struct {
	models.ProfileInput

	profile models.Profile
}

// Validate accepts free strings for the enumerated fields.
func (r *AddFamilyMemberRequest) Validate() error {
	p, err := r.MemberProfile()
	if err != nil {
		return err
	}
	r.profile = p
	return nil
}
