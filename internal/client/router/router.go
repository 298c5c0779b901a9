// Package router decides where the application starts: the main area for a
// signed-in user, the welcome flow otherwise. The decision is taken once,
// when the auth state first resolves.
package router

import (
	"context"
	"errors"
	"sync"

	"github.com/nospi-app/nospi/internal/client/session"
)

var ErrFeedClosed = errors.New("router: state feed closed before resolution")

type State int

const (
	Checking State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

type Destination string

const (
	Waiting Destination = "waiting"
	Main    Destination = "main"
	Welcome Destination = "welcome"
)

// Resolve maps an auth state to the destination it calls for.
func Resolve(s session.State) Destination {
	switch {
	case s.Loading:
		return Waiting
	case s.User != nil:
		return Main
	default:
		return Welcome
	}
}

func destinationOf(s State) Destination {
	switch s {
	case Authenticated:
		return Main
	case Unauthenticated:
		return Welcome
	default:
		return Waiting
	}
}

type Router struct {
	mu    sync.Mutex
	state State
}

func New() *Router {
	return &Router{state: Checking}
}

func (r *Router) Current() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Observe feeds one auth state to the router. It returns the destination and
// true only for the state that resolves Checking; before that it returns
// Waiting, and afterwards the already chosen destination.
func (r *Router) Observe(s session.State) (Destination, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Checking {
		return destinationOf(r.state), false
	}

	switch Resolve(s) {
	case Main:
		r.state = Authenticated
	case Welcome:
		r.state = Unauthenticated
	default:
		return Waiting, false
	}
	return destinationOf(r.state), true
}

// Await reads states until the router resolves and returns the destination.
// A router that already resolved returns its destination immediately.
func (r *Router) Await(ctx context.Context, states <-chan session.State) (Destination, error) {
	if cur := r.Current(); cur != Checking {
		return destinationOf(cur), nil
	}

	for {
		select {
		case <-ctx.Done():
			return Waiting, ctx.Err()
		case s, ok := <-states:
			if !ok {
				return Waiting, ErrFeedClosed
			}
			if dest, fired := r.Observe(s); fired {
				return dest, nil
			}
		}
	}
}
