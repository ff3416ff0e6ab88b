package eligibility

// Reason strings are part of the public API contract.
const (
	ReasonAgeBelowMinimum     = "Age below minimum requirement"
	ReasonAgeAboveMaximum     = "Age exceeds maximum limit"
	ReasonIncomeExceedsLimit  = "Income exceeds scheme limit"
	ReasonCategoryNotEligible = "Category not eligible"
	ReasonGenderRestriction   = "Gender restriction"
	ReasonDisabilityRequired  = "Disability required"
	ReasonStudentRequired     = "Student status required"
	ReasonEmploymentMismatch  = "Employment status mismatch"
	ReasonStateRestriction    = "State restriction"
	ReasonSeniorCitizensOnly  = "Scheme for senior citizens only"
	ReasonFarmersOnly         = "Scheme for farmers only"
)

// Target groups and categories with extra guards.
const (
	TargetSeniorCitizens = "Senior Citizens"
	TargetStudents       = "Students"
	TargetFarmers        = "Farmers"
	TargetWorkingWomen   = "Working Women"

	CategoryPension = "Pension"
	GenderFemale    = "Female"

	SeniorCitizenMinAge = 60
)

// Result is the outcome of evaluating one profile against one scheme.
// Reason is nil exactly when IsEligible is true.
type Result struct {
	IsEligible bool    `json:"isEligible"`
	Reason     *string `json:"reason"`
}

func eligible() Result {
	return Result{IsEligible: true}
}

func rejected(reason string) Result {
	return Result{IsEligible: false, Reason: &reason}
}

// ReasonLabel returns the reason text, or "eligible" for a passing result.
func (r Result) ReasonLabel() string {
	if r.Reason == nil {
		return "eligible"
	}
	return *r.Reason
}
