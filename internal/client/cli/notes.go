package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/tabs"
)

func (a *App) ListNotes(ctx context.Context) error {
	res := a.notes.FetchNotes(ctx)
	if !res.OK() {
		printlnFn("No se pudieron cargar las notas:", res.Error)
		return res.Err()
	}
	if len(res.Data) == 0 {
		printlnFn("No tienes notas.")
		return nil
	}
	return tabs.WriteNotes(stdout, res.Data)
}

func (a *App) AddNote(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Título", os.Stdout)
	if err != nil {
		return err
	}
	text, err := getMultiline(a.reader, "Contenido (opcional)", os.Stdout)
	if err != nil {
		return err
	}

	var content *string
	if text != "" {
		content = &text
	}

	res := a.notes.CreateNote(ctx, title, content)
	if !res.OK() {
		printlnFn("No se pudo crear la nota:", res.Error)
		return res.Err()
	}
	printlnFn(fmt.Sprintf("Nota creada (%s).", res.Data.ID))
	return nil
}

// EditNote asks for a note ID and the new values. An empty answer keeps the
// current value.
func (a *App) EditNote(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "ID de la nota", os.Stdout)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Nuevo título (vacío para no cambiarlo)", os.Stdout)
	if err != nil {
		return err
	}
	text, err := getMultiline(a.reader, "Nuevo contenido (vacío para no cambiarlo)", os.Stdout)
	if err != nil {
		return err
	}

	var patch models.NotePatch
	if title != "" {
		patch.Title = &title
	}
	if text != "" {
		patch.Content = &text
	}

	res := a.notes.UpdateNote(ctx, id, patch)
	if !res.OK() {
		printlnFn("No se pudo actualizar la nota:", res.Error)
		return res.Err()
	}
	printlnFn("Nota actualizada.")
	return nil
}

func (a *App) DeleteNote(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "ID de la nota", os.Stdout)
	if err != nil {
		return err
	}

	res := a.notes.DeleteNote(ctx, id)
	if !res.OK() {
		printlnFn("No se pudo borrar la nota:", res.Error)
		return res.Err()
	}
	printlnFn("Nota borrada.")
	return nil
}
