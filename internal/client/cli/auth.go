package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nospi-app/nospi/internal/client/backend"
	"github.com/nospi-app/nospi/internal/client/session"
	"github.com/nospi-app/nospi/internal/common"
	"github.com/nospi-app/nospi/internal/shared"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing.
var getSimpleText = GetSimpleText
var getMultiline = GetMultiline
var getPassword = GetPassword

// describeError turns an error into a message for the user.
func describeError(err error) string {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		return "No hay conexión con Nospi. Inténtalo de nuevo en un momento."
	case errors.Is(err, backend.ErrConfirmationRequired):
		return "Cuenta creada. Confirma tu teléfono y después inicia sesión con 'login'."
	case errors.Is(err, common.ErrUnauthorized):
		return "Tu sesión no es válida. Vuelve a iniciar sesión."
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

// Login prompts for a phone number or email and a password and signs in.
// It returns once the session propagator reports the new user.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Teléfono o email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if _, err := a.backend.SignIn(ctx, identifier, password); err != nil {
		a.logger.Warn(ctx, "login failed", "error", err)
		printlnFn(describeError(err))
		return err
	}

	if !a.waitForState(ctx, session.State.SignedIn) {
		a.logger.Warn(ctx, "signed in but session state did not update in time")
	}
	return nil
}

// Logout ends the session. On failure the user stays signed in and sees the
// reason.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		a.logger.Warn(ctx, "logout failed", "error", err)
		printlnFn(fmt.Sprintf("No se pudo cerrar la sesión: %s", describeError(err)))
		return err
	}

	a.waitForState(ctx, func(s session.State) bool { return !s.Loading && s.User == nil })
	return nil
}
