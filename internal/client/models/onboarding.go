package models

import "fmt"

const (
	MinAge = 18
	MaxAge = 60
)

// AgeRange is the preferred partner age range. Min <= Max is not enforced.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ClampAge bounds n to [MinAge, MaxAge].
func ClampAge(n int) int {
	return max(MinAge, min(MaxAge, n))
}

// NewAgeRange clamps both ends independently.
func NewAgeRange(lo, hi int) AgeRange {
	return AgeRange{Min: ClampAge(lo), Max: ClampAge(hi)}
}

func (r AgeRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// OnboardingDraft is the profile assembled from the answers stored during
// onboarding. Validation tags are checked only at hand-off.
type OnboardingDraft struct {
	Gender       string    `json:"gender" validate:"required,oneof=hombre mujer otro"`
	InterestedIn string    `json:"interested_in" validate:"required,oneof=hombres mujeres ambos"`
	AgeRange     *AgeRange `json:"age_range" validate:"required"`
	Name         string    `json:"name" validate:"required,min=2"`
	Phone        string    `json:"phone" validate:"required,min=7"`
	PhotoPath    string    `json:"photo_path,omitempty"`
}

// Profile converts the draft into the profile sent to the backend.
func (d OnboardingDraft) Profile(photoURL string) Profile {
	return Profile{
		Name:         d.Name,
		Gender:       d.Gender,
		InterestedIn: d.InterestedIn,
		AgeRange:     d.AgeRange,
		Phone:        d.Phone,
		PhotoURL:     photoURL,
	}
}
