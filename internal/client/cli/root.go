package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/nospi-app/nospi/internal/client/router"
	"github.com/nospi-app/nospi/internal/client/session"
	"github.com/nospi-app/nospi/internal/client/tabs"
)

const welcomeText = `Nospi: citas de verdad, sin prisas.
Escribe 'start' para crear tu cuenta o 'login' si ya tienes una.`

// Run resolves the first screen, then serves commands until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Cargando...")
	a.auth.Start(ctx)

	dest, err := a.awaitFirstScreen(ctx)
	if err != nil {
		return err
	}
	a.logger.Debug(ctx, "first screen resolved", "destination", dest, "router", a.router.Current())

	if err := a.showDestination(ctx, dest); err != nil {
		return err
	}

	states, stop := a.auth.Watch()
	go a.watchSession(ctx, states, stop, a.auth.State().SignedIn())
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) awaitFirstScreen(ctx context.Context) (router.Destination, error) {
	states, stop := a.auth.Watch()
	defer stop()

	dest, err := a.router.Await(ctx, states)
	if err != nil {
		return dest, fmt.Errorf("resolve session: %w", err)
	}
	return dest, nil
}

func (a *App) showDestination(ctx context.Context, dest router.Destination) error {
	switch dest {
	case router.Main:
		return a.ShowTab(ctx, string(tabs.Events))
	default:
		printlnFn(welcomeText)
		return nil
	}
}

// watchSession reports sign-in and sign-out changes relative to signedIn,
// including ones the user did not ask for, such as an expired session.
func (a *App) watchSession(ctx context.Context, states <-chan session.State, stop func(), signedIn bool) {
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			if s.Loading || s.SignedIn() == signedIn {
				continue
			}
			signedIn = s.SignedIn()

			if signedIn {
				printlnFn(fmt.Sprintf("Sesión iniciada como %s.", displayName(s.User)))
			} else {
				printlnFn("Sesión cerrada.")
				printlnFn(welcomeText)
			}
		}
	}
}

// waitForStateTimeout bounds how long a command waits for its session event.
var waitForStateTimeout = 5 * time.Second

// waitForState blocks until the auth state satisfies pred. It reports false
// when the wait times out or ctx ends first.
func (a *App) waitForState(ctx context.Context, pred func(session.State) bool) bool {
	states, stop := a.auth.Watch()
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, waitForStateTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return false
		case s, ok := <-states:
			if !ok {
				return false
			}
			if pred(s) {
				return true
			}
		}
	}
}
