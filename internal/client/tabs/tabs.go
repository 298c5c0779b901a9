// Package tabs implements the main area: three independent screens behind a
// tab selector. Screens share nothing except read access to the auth state.
package tabs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var ErrUnknownTab = errors.New("unknown tab")

type Tab string

const (
	Events       Tab = "events"
	Appointments Tab = "appointments"
	Profile      Tab = "profile"
)

var order = []Tab{Events, Appointments, Profile}

// All returns the tabs in display order.
func All() []Tab {
	return append([]Tab(nil), order...)
}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, o := range order {
		if o == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Screen is one tab's content.
type Screen interface {
	Title() string
	Render(ctx context.Context, w io.Writer) error
}

// Selector keeps the active tab. The first tab is active initially.
type Selector struct {
	screens map[Tab]Screen

	mu     sync.Mutex
	active Tab
}

func NewSelector(events, appointments, profile Screen) *Selector {
	return &Selector{
		screens: map[Tab]Screen{
			Events:       events,
			Appointments: appointments,
			Profile:      profile,
		},
		active: Events,
	}
}

func (s *Selector) Active() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Selector) Select(t Tab) error {
	if _, ok := s.screens[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = t
	return nil
}

// Bar renders the tab strip with the active tab bracketed.
func (s *Selector) Bar() string {
	active := s.Active()

	parts := make([]string, 0, len(order))
	for _, t := range order {
		title := s.screens[t].Title()
		if t == active {
			title = "[" + title + "]"
		}
		parts = append(parts, title)
	}
	return strings.Join(parts, "  ")
}

// Render draws the tab strip followed by the active screen.
func (s *Selector) Render(ctx context.Context, w io.Writer) error {
	if _, err := fmt.Fprintln(w, s.Bar()); err != nil {
		return err
	}
	return s.screens[s.Active()].Render(ctx, w)
}
