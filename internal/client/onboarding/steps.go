// Package onboarding drives the sign-up questionnaire. Each step validates
// one answer, stores it in the preference store under its own key and moves
// to the next step; the hand-off step registers the assembled profile with
// the backend.
package onboarding

// Step names a screen of the questionnaire.
type Step string

const (
	StepGender   Step = "gender"
	StepInterest Step = "interested-in"
	StepAgeRange Step = "age-range"
	StepName     Step = "name"
	StepPhone    Step = "phone"
	StepPhoto    Step = "photo"
	StepHandoff  Step = "handoff"
	StepDone     Step = "done"
)

// Preference keys of the stored answers.
const (
	KeyGender   = "userGender"
	KeyInterest = "userInterest"
	KeyAgeRange = "userAgeRange"
	KeyName     = "userName"
	KeyPhone    = "userPhone"
	KeyPhoto    = "userPhoto"
)

var sequence = []Step{
	StepGender,
	StepInterest,
	StepAgeRange,
	StepName,
	StepPhone,
	StepPhoto,
	StepHandoff,
	StepDone,
}

var stepKeys = map[Step]string{
	StepGender:   KeyGender,
	StepInterest: KeyInterest,
	StepAgeRange: KeyAgeRange,
	StepName:     KeyName,
	StepPhone:    KeyPhone,
	StepPhoto:    KeyPhoto,
}

// DraftKeys lists every key written by the capture steps.
var DraftKeys = []string{KeyGender, KeyInterest, KeyAgeRange, KeyName, KeyPhone, KeyPhoto}

// Steps returns the capture steps in order.
func Steps() []Step {
	out := make([]Step, 0, len(stepKeys))
	for _, s := range sequence {
		if s.Capture() {
			out = append(out, s)
		}
	}
	return out
}

// Key returns the preference key the step writes, or "" for steps that
// store nothing.
func (s Step) Key() string {
	return stepKeys[s]
}

// Capture reports whether the step collects an answer.
func (s Step) Capture() bool {
	_, ok := stepKeys[s]
	return ok
}

// Next returns the step that follows s. Done is terminal.
func (s Step) Next() Step {
	for i, st := range sequence {
		if st == s && i+1 < len(sequence) {
			return sequence[i+1]
		}
	}
	return StepDone
}

func (s Step) valid() bool {
	for _, st := range sequence {
		if st == s {
			return true
		}
	}
	return false
}
