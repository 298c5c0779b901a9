package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/onboarding"
	"github.com/nospi-app/nospi/internal/client/session"
	"github.com/nospi-app/nospi/internal/shared"
)

var stepPrompts = map[onboarding.Step]string{
	onboarding.StepGender:   fmt.Sprintf("¿Cómo te identificas? (%s)", strings.Join(onboarding.Genders(), "/")),
	onboarding.StepInterest: fmt.Sprintf("¿A quién te interesa conocer? (%s)", strings.Join(onboarding.Interests(), "/")),
	onboarding.StepName:     "¿Cómo te llamas?",
	onboarding.StepPhone:    "Tu número de teléfono",
	onboarding.StepPhoto:    "Ruta de tu foto de perfil (jpg, png, webp o heic)",
}

// Start runs the onboarding questionnaire from the first unanswered step and
// finishes by creating the account. Rejected answers are asked again.
func (a *App) Start(ctx context.Context) error {
	step, err := a.flow.Resume(ctx)
	if err != nil {
		printlnFn(describeError(err))
		return err
	}
	if step != onboarding.StepGender {
		printlnFn("Continuamos tu registro donde lo dejaste.")
	}

	for {
		step := a.flow.Current()
		if step == onboarding.StepDone {
			break
		}

		err := a.runStep(ctx, step)
		if err == nil {
			continue
		}

		var verr *onboarding.ValidationError
		if !errors.As(err, &verr) {
			a.logger.Warn(ctx, "onboarding stopped", "step", step, "error", err)
			printlnFn(describeError(err))
			return err
		}

		printlnFn(verr.Message)
		if verr.Step != step && verr.Step.Capture() {
			_ = a.flow.Goto(verr.Step)
		}
	}

	printlnFn("¡Listo! Tu cuenta está creada.")
	a.waitForState(ctx, session.State.SignedIn)
	return nil
}

// errInput marks a failure to read user input, which ends the questionnaire.
type errInput struct{ err error }

func (e errInput) Error() string { return "read input: " + e.err.Error() }
func (e errInput) Unwrap() error { return e.err }

func (a *App) ask(prompt string) (string, error) {
	v, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", errInput{err}
	}
	return v, nil
}

func (a *App) runStep(ctx context.Context, step onboarding.Step) error {
	switch step {
	case onboarding.StepGender:
		v, err := a.ask(stepPrompts[step])
		if err != nil {
			return err
		}
		return a.flow.SubmitGender(ctx, v)

	case onboarding.StepInterest:
		v, err := a.ask(stepPrompts[step])
		if err != nil {
			return err
		}
		return a.flow.SubmitInterest(ctx, v)

	case onboarding.StepAgeRange:
		return a.askAgeRange(ctx)

	case onboarding.StepName:
		v, err := a.ask(stepPrompts[step])
		if err != nil {
			return err
		}
		return a.flow.SubmitName(ctx, v)

	case onboarding.StepPhone:
		v, err := a.ask(stepPrompts[step])
		if err != nil {
			return err
		}
		return a.flow.SubmitPhone(ctx, v)

	case onboarding.StepPhoto:
		v, err := a.ask(stepPrompts[step])
		if err != nil {
			return err
		}
		return a.flow.SubmitPhoto(ctx, v)

	case onboarding.StepHandoff:
		printlnFn("Elige una contraseña para tu cuenta.")
		password, err := getPassword(os.Stdout)
		if err != nil {
			return errInput{err}
		}
		defer shared.WipeByteArray(password)

		_, err = a.flow.Complete(ctx, string(password))
		return err

	default:
		return fmt.Errorf("unexpected onboarding step %q", step)
	}
}

func (a *App) askAge(prompt string) (int, error) {
	for {
		v, err := a.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err == nil {
			return n, nil
		}
		printlnFn("Introduce un número.")
	}
}

func (a *App) askAgeRange(ctx context.Context) error {
	lo, err := a.askAge(fmt.Sprintf("Edad mínima que buscas (%d-%d)", models.MinAge, models.MaxAge))
	if err != nil {
		return err
	}
	hi, err := a.askAge(fmt.Sprintf("Edad máxima que buscas (%d-%d)", models.MinAge, models.MaxAge))
	if err != nil {
		return err
	}

	r, err := a.flow.SubmitAgeRange(ctx, lo, hi)
	if err != nil {
		return err
	}
	if r.Min != lo || r.Max != hi {
		printlnFn(fmt.Sprintf("Rango ajustado a %s.", r))
	}
	return nil
}
