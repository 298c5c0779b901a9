package tabs

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/notes"
	"github.com/nospi-app/nospi/internal/client/session"
)

type EventsScreen struct{}

func (EventsScreen) Title() string { return "Eventos" }

func (EventsScreen) Render(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, "Próximos eventos\n  Todavía no hay eventos cerca de ti.")
	return err
}

// NotesFetcher lists the signed-in user's notes.
type NotesFetcher interface {
	FetchNotes(ctx context.Context) notes.Result[[]models.Note]
}

// AppointmentsScreen lists the user's notes as appointments.
type AppointmentsScreen struct {
	Notes NotesFetcher
}

func (AppointmentsScreen) Title() string { return "Citas" }

func (s AppointmentsScreen) Render(ctx context.Context, w io.Writer) error {
	res := s.Notes.FetchNotes(ctx)
	if !res.OK() {
		_, err := fmt.Fprintf(w, "No se pudieron cargar tus citas: %s\n", res.Error)
		return err
	}
	if len(res.Data) == 0 {
		_, err := fmt.Fprintln(w, "Todavía no tienes citas.")
		return err
	}
	return WriteNotes(w, res.Data)
}

// WriteNotes prints notes as an aligned table.
func WriteNotes(w io.Writer, list []models.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTÍTULO\tCONTENIDO\tCREADA")
	for _, n := range list {
		content := ""
		if n.Content != nil {
			content = *n.Content
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Title, content, n.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// StateSource exposes the current auth state.
type StateSource interface {
	State() session.State
}

// DraftLoader reads the locally stored onboarding answers.
type DraftLoader interface {
	LoadDraft(ctx context.Context) (models.OnboardingDraft, error)
}

type ProfileScreen struct {
	Auth   StateSource
	Drafts DraftLoader
}

func (ProfileScreen) Title() string { return "Perfil" }

func (s ProfileScreen) Render(ctx context.Context, w io.Writer) error {
	st := s.Auth.State()

	switch {
	case st.Loading:
		_, err := fmt.Fprintln(w, "Cargando perfil...")
		return err
	case st.User == nil:
		_, err := fmt.Fprintln(w, "No has iniciado sesión.")
		return err
	}

	u := st.User
	p := u.Profile

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}
	row("Nombre", p.Name)
	row("Teléfono", firstNonEmpty(u.Phone, p.Phone))
	row("Email", u.Email)
	row("Género", p.Gender)
	row("Interés", p.InterestedIn)
	if p.AgeRange != nil {
		row("Edad buscada", p.AgeRange.String())
	}
	row("Foto", p.PhotoURL)
	row("ID", u.ID)
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Drafts == nil {
		return nil
	}
	d, err := s.Drafts.LoadDraft(ctx)
	if err != nil {
		return err
	}
	if d != (models.OnboardingDraft{}) {
		_, err = fmt.Fprintln(w, "Hay un registro sin terminar en este dispositivo.")
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
