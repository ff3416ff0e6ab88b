package handler

import (
	profilemodels "sarkar/internal/profile/models"
	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
)

// CheckEligibilityRequest is the body of POST /schemes/eligible. The profile
// is evaluated without being stored.
type CheckEligibilityRequest struct {
	Profile *profilemodels.ProfileInput `json:"profile"`
	Filters *models.Filters             `json:"filters"`

	profile profilemodels.Profile
}

// Validate implements httputil.Validatable.
func (r *CheckEligibilityRequest) Validate() error {
	if r.Profile == nil {
		return dErrors.New(dErrors.CodeBadRequest, `Request body must contain a "profile" object.`)
	}
	p, err := r.Profile.EvaluableProfile()
	if err != nil {
		return err
	}
	r.profile = p
	return nil
}
