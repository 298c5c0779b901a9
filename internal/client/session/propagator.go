// Package session keeps the application's read-only projection of the
// backend session: the current (session, user) pair and whether it is still
// being resolved.
package session

import (
	"context"
	"sync"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/logging"
)

// Source is the part of the backend client the propagator depends on.
type Source interface {
	GetSession(ctx context.Context) (*models.Session, error)
	Subscribe() (<-chan models.AuthEvent, func())
	SignOut(ctx context.Context) error
}

// State is a snapshot of the cached auth state. Loading means the state is
// not known yet; it never means signed out.
type State struct {
	Session *models.Session
	User    *models.User
	Loading bool
}

// SignedIn reports whether the state is resolved and carries a user.
func (s State) SignedIn() bool {
	return !s.Loading && s.User != nil
}

type fetchResult struct {
	session *models.Session
	err     error
}

// Propagator is the single writer of State. Session events and the initial
// fetch are applied by one goroutine in arrival order; readers take
// snapshots or watch for changes.
type Propagator struct {
	src    Source
	logger logging.Logger

	mu       sync.Mutex
	state    State
	watchers map[int]chan State
	nextID   int
	started  bool
	closed   bool

	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
	closeOnce   sync.Once
}

func New(src Source, logger logging.Logger) *Propagator {
	return &Propagator{
		src:      src,
		logger:   logger.With("component", "session"),
		state:    State{Loading: true},
		watchers: make(map[int]chan State),
		done:     make(chan struct{}),
	}
}

// Start subscribes to session events and fetches the current session in the
// background. Only the first call has an effect.
func (p *Propagator) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	events, unsubscribe := p.src.Subscribe()
	var unsubOnce sync.Once
	p.unsubscribe = func() { unsubOnce.Do(unsubscribe) }
	p.mu.Unlock()

	fetched := make(chan fetchResult, 1)
	go func() {
		s, err := p.src.GetSession(ctx)
		fetched <- fetchResult{session: s, err: err}
	}()

	go p.run(ctx, events, fetched)
}

// run is the only writer of the state. The subscription is released when it
// returns, whether through Close or the start context ending.
func (p *Propagator) run(ctx context.Context, events <-chan models.AuthEvent, fetched <-chan fetchResult) {
	defer close(p.done)
	defer p.unsubscribe()

	applied := false
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			applied = true
			p.set(ev.Session)
			p.logger.Debug(ctx, "session event applied", "kind", ev.Kind, "signed_in", ev.Session != nil)

		case r := <-fetched:
			fetched = nil
			if applied {
				p.logger.Debug(ctx, "discarding initial session fetch, an event is newer")
				continue
			}
			if r.err != nil {
				p.logger.Warn(ctx, "initial session fetch failed, treating as signed out", "error", r.err)
			}
			p.set(r.session)
		}
	}
}

func (p *Propagator) set(s *models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = State{Session: s, User: models.UserOf(s), Loading: false}
	for _, ch := range p.watchers {
		// replace any unread state with the newest one
		select {
		case <-ch:
		default:
		}
		ch <- p.state
	}
}

// State returns the current snapshot.
func (p *Propagator) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Watch returns a feed of state changes, starting with the current state. A
// slow reader only ever sees the newest state. The returned func stops the
// feed and closes the channel.
func (p *Propagator) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.watchers[id] = ch
	ch <- p.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.watchers[id]; ok {
				delete(p.watchers, id)
				close(c)
			}
		})
	}
}

// SignOut asks the backend to end the session. State changes only when the
// resulting sign-out event arrives.
func (p *Propagator) SignOut(ctx context.Context) error {
	return p.src.SignOut(ctx)
}

// Close releases the backend subscription and stops every watcher. It is
// safe to call more than once.
func (p *Propagator) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		started := p.started
		p.mu.Unlock()

		if started {
			p.cancel()
			p.unsubscribe()
			<-p.done
		}

		p.mu.Lock()
		for id, ch := range p.watchers {
			delete(p.watchers, id)
			close(ch)
		}
		p.mu.Unlock()
	})
}
