package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/nospi-app/nospi/internal/client/backend"
	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/repositories/preferences"
	"github.com/nospi-app/nospi/internal/logging"
)

var statFn = os.Stat

// Registrar creates the backend account at hand-off.
type Registrar interface {
	SignUp(ctx context.Context, req backend.SignUpRequest) (*models.Session, error)
}

// PhotoUploader stores the profile photo and returns its public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, path string) (string, error)
}

// Flow is the questionnaire state machine. Answers go to the store as soon
// as they are accepted, so an interrupted flow can be resumed.
type Flow struct {
	store     preferences.Repository
	registrar Registrar
	uploader  PhotoUploader
	logger    logging.Logger
	validate  *validator.Validate

	mu   sync.Mutex
	step Step
}

// NewFlow returns a flow positioned at the first step. uploader may be nil,
// in which case the photo is kept local and no URL is sent.
func NewFlow(store preferences.Repository, registrar Registrar, uploader PhotoUploader, logger logging.Logger) *Flow {
	return &Flow{
		store:     store,
		registrar: registrar,
		uploader:  uploader,
		logger:    logger.With("component", "onboarding"),
		validate:  validator.New(),
		step:      StepGender,
	}
}

func (f *Flow) Current() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Goto moves the flow to step. Any step of the questionnaire can be
// re-entered; submitting it again overwrites the stored answer.
func (f *Flow) Goto(step Step) error {
	if !step.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = step
	return nil
}

// Resume positions the flow at the first step without a stored answer, or at
// hand-off when every answer is present.
func (f *Flow) Resume(ctx context.Context) (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range Steps() {
		_, ok, err := f.store.Get(ctx, s.Key())
		if err != nil {
			return f.step, fmt.Errorf("resume onboarding: %w", err)
		}
		if !ok {
			f.step = s
			return s, nil
		}
	}

	f.step = StepHandoff
	return f.step, nil
}

// submit validates and stores the answer for step, then advances. Nothing is
// written when step is not the current one or the answer is rejected.
func (f *Flow) submit(ctx context.Context, step Step, accept func() (string, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != step {
		return fmt.Errorf("%w: at %s, got %s", ErrOutOfOrder, f.step, step)
	}

	value, err := accept()
	if err != nil {
		return err
	}

	if err := f.store.Set(ctx, step.Key(), value); err != nil {
		return fmt.Errorf("save %s: %w", step, err)
	}

	f.step = step.Next()
	f.logger.Debug(ctx, "onboarding step completed", "step", step, "next", f.step)
	return nil
}

func (f *Flow) SubmitGender(ctx context.Context, gender string) error {
	return f.submit(ctx, StepGender, func() (string, error) {
		if !oneOf(gender, genders) {
			return "", invalid(StepGender, "Elige una opción: %s.", strings.Join(genders, ", "))
		}
		return gender, nil
	})
}

func (f *Flow) SubmitInterest(ctx context.Context, interest string) error {
	return f.submit(ctx, StepInterest, func() (string, error) {
		if !oneOf(interest, interests) {
			return "", invalid(StepInterest, "Elige una opción: %s.", strings.Join(interests, ", "))
		}
		return interest, nil
	})
}

// SubmitAgeRange clamps both ends to the supported ages and stores the
// result. A minimum above the maximum is accepted as given.
func (f *Flow) SubmitAgeRange(ctx context.Context, lo, hi int) (models.AgeRange, error) {
	r := models.NewAgeRange(lo, hi)
	err := f.submit(ctx, StepAgeRange, func() (string, error) {
		b, err := json.Marshal(r)
		return string(b), err
	})
	if err != nil {
		return models.AgeRange{}, err
	}
	return r, nil
}

func (f *Flow) SubmitName(ctx context.Context, name string) error {
	return f.submit(ctx, StepName, func() (string, error) {
		return name, validateName(name)
	})
}

func (f *Flow) SubmitPhone(ctx context.Context, phone string) error {
	return f.submit(ctx, StepPhone, func() (string, error) {
		return phone, validatePhone(phone)
	})
}

func (f *Flow) SubmitPhoto(ctx context.Context, path string) error {
	return f.submit(ctx, StepPhoto, func() (string, error) {
		return path, validatePhoto(path)
	})
}

// LoadDraft assembles the stored answers. Missing answers stay empty.
func (f *Flow) LoadDraft(ctx context.Context) (models.OnboardingDraft, error) {
	var d models.OnboardingDraft

	values := make(map[string]string, len(DraftKeys))
	for _, k := range DraftKeys {
		v, ok, err := f.store.Get(ctx, k)
		if err != nil {
			return d, fmt.Errorf("load draft: %w", err)
		}
		if ok {
			values[k] = v
		}
	}

	d.Gender = values[KeyGender]
	d.InterestedIn = values[KeyInterest]
	d.Name = strings.TrimSpace(values[KeyName])
	d.Phone = values[KeyPhone]
	d.PhotoPath = values[KeyPhoto]

	if raw, ok := values[KeyAgeRange]; ok {
		var r models.AgeRange
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return d, fmt.Errorf("load draft: age range: %w", err)
		}
		d.AgeRange = &r
	}
	return d, nil
}

var fieldSteps = map[string]Step{
	"Gender":       StepGender,
	"InterestedIn": StepInterest,
	"AgeRange":     StepAgeRange,
	"Name":         StepName,
	"Phone":        StepPhone,
}

var fieldLabels = map[string]string{
	"Gender":       "género",
	"InterestedIn": "interés",
	"AgeRange":     "rango de edad",
	"Name":         "nombre",
	"Phone":        "teléfono",
}

// draftError turns validator output into a ValidationError pointing at the
// first step that needs a new answer.
func draftError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate draft: %w", err)
	}

	labels := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		labels = append(labels, fieldLabels[fe.Field()])
	}

	step := StepHandoff
	if s, ok := fieldSteps[verrs[0].Field()]; ok {
		step = s
	}
	return invalid(step, "Faltan datos del perfil: %s.", strings.Join(labels, ", "))
}

// Complete registers the assembled profile. On success the stored answers
// are removed and the flow is done; on failure it stays at hand-off.
func (f *Flow) Complete(ctx context.Context, password string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepHandoff {
		return nil, fmt.Errorf("%w: at %s, got %s", ErrOutOfOrder, f.step, StepHandoff)
	}

	draft, err := f.LoadDraft(ctx)
	if err != nil {
		return nil, err
	}

	if err := f.validate.Struct(draft); err != nil {
		return nil, draftError(err)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, invalid(StepHandoff, "La contraseña debe tener al menos %d caracteres.", MinPasswordLength)
	}

	var photoURL string
	if draft.PhotoPath != "" && f.uploader != nil {
		photoURL, err = f.uploader.UploadPhoto(ctx, draft.PhotoPath)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
	}

	s, err := f.registrar.SignUp(ctx, backend.SignUpRequest{
		Phone:    normalizePhone(draft.Phone),
		Password: password,
		Profile:  draft.Profile(photoURL),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := f.store.ClearKeys(ctx, DraftKeys...); err != nil {
		f.logger.Warn(ctx, "clearing onboarding draft failed", "error", err)
	}

	f.step = StepDone
	f.logger.Info(ctx, "onboarding completed")
	return s, nil
}
