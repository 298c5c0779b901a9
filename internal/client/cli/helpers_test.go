package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nospi-app/nospi/internal/client/backend"
	"github.com/nospi-app/nospi/internal/client/config"
	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/notes"
	"github.com/nospi-app/nospi/internal/client/router"
	"github.com/nospi-app/nospi/internal/client/session"
	"github.com/nospi-app/nospi/internal/client/tabs"
	"github.com/nospi-app/nospi/internal/logging"
)

// fakeBackend is both the propagator's session source and the app's auth
// service. Sign-in and sign-out publish the matching events.
type fakeBackend struct {
	hub *backend.Hub

	mu      sync.Mutex
	session *models.Session

	signInErr  error
	signOutErr error
	pingErr    error

	signInID string
	signInPW string
	pings    atomic.Int32
}

func newFakeBackend(s *models.Session) *fakeBackend {
	return &fakeBackend{hub: backend.NewHub(), session: s}
}

func (f *fakeBackend) GetSession(context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeBackend) Subscribe() (<-chan models.AuthEvent, func()) {
	return f.hub.Subscribe()
}

func (f *fakeBackend) install(s *models.Session, kind models.AuthEventKind) {
	f.mu.Lock()
	f.session = s
	f.mu.Unlock()
	f.hub.Publish(models.AuthEvent{Kind: kind, Session: s})
}

func (f *fakeBackend) SignIn(_ context.Context, identifier string, password []byte) (*models.Session, error) {
	f.signInID, f.signInPW = identifier, string(password)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	s := testSession("u1", "Lucía")
	f.install(s, models.AuthEventSignedIn)
	return s, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.install(nil, models.AuthEventSignedOut)
	return nil
}

func (f *fakeBackend) Ping(context.Context) error {
	f.pings.Add(1)
	return f.pingErr
}

func testSession(id, name string) *models.Session {
	return &models.Session{
		AccessToken: "token-" + id,
		User:        &models.User{ID: id, Phone: "34600111222", Profile: models.Profile{Name: name}},
	}
}

type fakeNotes struct {
	fetch  notes.Result[[]models.Note]
	create notes.Result[*models.Note]
	update notes.Result[*models.Note]
	del    notes.DeleteResult

	title   string
	content *string
	id      string
	patch   models.NotePatch
}

func (f *fakeNotes) FetchNotes(context.Context) notes.Result[[]models.Note] { return f.fetch }

func (f *fakeNotes) CreateNote(_ context.Context, title string, content *string) notes.Result[*models.Note] {
	f.title, f.content = title, content
	return f.create
}

func (f *fakeNotes) UpdateNote(_ context.Context, id string, patch models.NotePatch) notes.Result[*models.Note] {
	f.id, f.patch = id, patch
	return f.update
}

func (f *fakeNotes) DeleteNote(_ context.Context, id string) notes.DeleteResult {
	f.id = id
	return f.del
}

// output collects everything printed through printlnFn and stdout.
type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func captureOutput(t *testing.T) *output {
	t.Helper()
	out := &output{}

	origPrint, origStdout := printlnFn, stdout
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(out, a...) }
	stdout = out
	t.Cleanup(func() { printlnFn, stdout = origPrint, origStdout })
	return out
}

func stubAnswers(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	var mu sync.Mutex
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

func stubMultiline(t *testing.T, answers ...string) {
	t.Helper()
	orig := getMultiline
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", nil
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getMultiline = orig })
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

// newTestApp wires an App around fb with a started propagator whose first
// state has resolved.
func newTestApp(t *testing.T, fb *fakeBackend) *App {
	t.Helper()

	auth := session.New(fb, logging.Discard())
	auth.Start(context.Background())
	t.Cleanup(auth.Close)

	ns := &fakeNotes{}
	a := &App{
		config:  &config.Config{OnlineCheckInterval: 10 * time.Millisecond},
		logger:  logging.Discard(),
		backend: fb,
		auth:    auth,
		router:  router.New(),
		notes:   ns,
		tabs: tabs.NewSelector(
			tabs.EventsScreen{},
			tabs.AppointmentsScreen{Notes: ns},
			tabs.ProfileScreen{Auth: auth},
		),
		reader: bufio.NewReader(strings.NewReader("")),
	}

	require.True(t, a.waitForState(context.Background(), func(s session.State) bool { return !s.Loading }))
	return a
}
