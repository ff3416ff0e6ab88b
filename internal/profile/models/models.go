package models

import "time"

// Profile is the demographic and economic description of one person. Age is
// never stored; it is derived from DateOfBirth at evaluation time.
type Profile struct {
	Name             string  `json:"name"`
	DateOfBirth      string  `json:"dateOfBirth"` // YYYY-MM-DD
	Gender           string  `json:"gender"`
	AnnualIncome     float64 `json:"annualIncome"`
	Category         string  `json:"category"`
	State            string  `json:"state"`
	IsStudent        bool    `json:"isStudent"`
	EmploymentStatus string  `json:"employmentStatus"`
	IsDisabled       bool    `json:"isDisabled"`
	EducationLevel   *string `json:"educationLevel"`
	LandOwnership    *bool   `json:"landOwnership"`
}

// OwnsLand treats an absent answer as no.
func (p Profile) OwnsLand() bool {
	return p.LandOwnership != nil && *p.LandOwnership
}

// FamilyMember is a dependant profile stored under a user document.
type FamilyMember struct {
	ID string `json:"id"`
	Profile
}

// NotificationRecord maps scheme ID to the time a deadline reminder was sent.
// It only grows.
type NotificationRecord map[string]time.Time

// Notified reports whether a reminder for schemeID was already sent.
func (r NotificationRecord) Notified(schemeID string) bool {
	_, ok := r[schemeID]
	return ok
}

// UserDocument is everything stored for one authenticated user.
type UserDocument struct {
	UserID         string         `json:"uid"`
	PrimaryProfile *Profile       `json:"primaryProfile"`
	FamilyMembers  []FamilyMember `json:"familyMembers"`
	DeviceTokens   []string       `json:"fcmTokens"`
	// DeadlineNotifications is nil for documents created before reminders
	// existed; the sweep initializes it lazily.
	DeadlineNotifications NotificationRecord `json:"deadlineNotifications,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// FindMember returns the family member with the given ID.
func (d *UserDocument) FindMember(memberID string) (FamilyMember, bool) {
	for _, m := range d.FamilyMembers {
		if m.ID == memberID {
			return m, true
		}
	}
	return FamilyMember{}, false
}

// Clone returns a deep copy so callers can't mutate stored state.
func (d *UserDocument) Clone() *UserDocument {
	if d == nil {
		return nil
	}
	out := *d
	if d.PrimaryProfile != nil {
		p := *d.PrimaryProfile
		out.PrimaryProfile = &p
	}
	out.FamilyMembers = append([]FamilyMember(nil), d.FamilyMembers...)
	out.DeviceTokens = append([]string(nil), d.DeviceTokens...)
	if d.DeadlineNotifications != nil {
		out.DeadlineNotifications = make(NotificationRecord, len(d.DeadlineNotifications))
		for k, v := range d.DeadlineNotifications {
			out.DeadlineNotifications[k] = v
		}
	}
	return &out
}

// TokenOutcome is the result of registering a device token.
type TokenOutcome string

const (
	TokenAdded   TokenOutcome = "added"
	TokenExists  TokenOutcome = "exists"
	TokenEvicted TokenOutcome = "evicted"
)

// MaxDeviceTokens caps stored push tokens per user; the oldest is evicted.
const MaxDeviceTokens = 5

// Profile types accepted when resolving which profile to evaluate.
const (
	ProfileTypePrimary = "primary"
	ProfileTypeFamily  = "family"
)
