package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nospi-app/nospi/internal/client/backend"
	"github.com/nospi-app/nospi/internal/client/config"
	"github.com/nospi-app/nospi/internal/client/localdb"
	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/notes"
	"github.com/nospi-app/nospi/internal/client/onboarding"
	"github.com/nospi-app/nospi/internal/client/repositories/preferences"
	"github.com/nospi-app/nospi/internal/client/router"
	"github.com/nospi-app/nospi/internal/client/session"
	"github.com/nospi-app/nospi/internal/client/storage"
	"github.com/nospi-app/nospi/internal/client/tabs"
	"github.com/nospi-app/nospi/internal/filex"
	"github.com/nospi-app/nospi/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type authState interface {
	Start(ctx context.Context)
	State() session.State
	Watch() (<-chan session.State, func())
	SignOut(ctx context.Context) error
	Close()
}

type authService interface {
	SignIn(ctx context.Context, identifier string, password []byte) (*models.Session, error)
	Ping(ctx context.Context) error
}

type onboardingFlow interface {
	Current() onboarding.Step
	Goto(step onboarding.Step) error
	Resume(ctx context.Context) (onboarding.Step, error)
	SubmitGender(ctx context.Context, gender string) error
	SubmitInterest(ctx context.Context, interest string) error
	SubmitAgeRange(ctx context.Context, lo, hi int) (models.AgeRange, error)
	SubmitName(ctx context.Context, name string) error
	SubmitPhone(ctx context.Context, phone string) error
	SubmitPhoto(ctx context.Context, path string) error
	Complete(ctx context.Context, password string) (*models.Session, error)
}

type notesService interface {
	FetchNotes(ctx context.Context) notes.Result[[]models.Note]
	CreateNote(ctx context.Context, title string, content *string) notes.Result[*models.Note]
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) notes.Result[*models.Note]
	DeleteNote(ctx context.Context, id string) notes.DeleteResult
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	backend authService
	auth    authState
	router  *router.Router
	flow    onboardingFlow
	notes   notesService
	tabs    *tabs.Selector
	reader  *bufio.Reader

	modeMu sync.Mutex
	mode   Mode
}

// NewApp opens the local database and wires every client component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	if err := filex.EnsureParentDir(c.PreferencesDSN); err != nil {
		return nil, err
	}
	db, err := localdb.Open(ctx, c.PreferencesDSN)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	prefs := preferences.NewSQLiteRepository(db)

	bc, err := backend.NewHTTPClient(ctx, c.BackendURL, c.APIKey, prefs, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	uploader := storage.NewS3PhotoUploader(storage.Options{
		Endpoint:      c.PhotoStorageEndpoint(),
		Region:        c.StorageRegion,
		AccessKey:     c.StorageAccessKey,
		SecretKey:     c.StorageSecretKey,
		Bucket:        c.PhotoBucket,
		PublicBaseURL: c.BackendURL,
	}, logger)

	auth := session.New(bc, logger)
	flow := onboarding.NewFlow(prefs, bc, uploader, logger)
	ns := notes.NewService(bc, logger)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		backend: bc,
		auth:    auth,
		router:  router.New(),
		flow:    flow,
		notes:   ns,
		tabs: tabs.NewSelector(
			tabs.EventsScreen{},
			tabs.AppointmentsScreen{Notes: ns},
			tabs.ProfileScreen{Auth: auth, Drafts: flow},
		),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Close tears down the session propagator and the local database.
func (a *App) Close() {
	if a.auth != nil {
		a.auth.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the backend every interval and records the
// result as the app mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.backend.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "backend ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().SignedIn()
}

func (a *App) getStatus() string {
	var parts []string
	if u := a.auth.State().User; u != nil {
		parts = append(parts, displayName(u))
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func displayName(u *models.User) string {
	switch {
	case u.Profile.Name != "":
		return u.Profile.Name
	case u.Phone != "":
		return u.Phone
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
