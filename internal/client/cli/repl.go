package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	Start(ctx context.Context) error
	Login(ctx context.Context) error
	ShowTab(ctx context.Context, name string) error
	ListNotes(ctx context.Context) error
	AddNote(ctx context.Context) error
	EditNote(ctx context.Context) error
	DeleteNote(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	welcomeHelp = "Comandos: start, login, exit"
	mainHelp    = "Comandos: events, appointments, profile, notes, addnote, editnote, delnote, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The accepted commands depend on whether a user is signed in, so the same
// loop serves the welcome screen and the main area. It returns on EOF, on
// exit/quit, or when ctx is done.
//
// Handler errors are not fatal: handlers report them to the user and the
// loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("nospi %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("¡Hasta pronto!")
			return
		}

		if a.isLoggedIn() {
			dispatchMain(ctx, a, cmd)
		} else {
			dispatchWelcome(ctx, a, cmd)
		}
	}
}

func dispatchWelcome(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "help":
		printlnFn(welcomeHelp)
	case "start", "register":
		_ = a.Start(ctx)
	case "login":
		_ = a.Login(ctx)
	default:
		printlnFn("Comando desconocido:", cmd)
	}
}

func dispatchMain(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "help":
		printlnFn(mainHelp)
	case "events", "appointments", "profile":
		_ = a.ShowTab(ctx, cmd)
	case "notes", "l":
		_ = a.ListNotes(ctx)
	case "addnote":
		_ = a.AddNote(ctx)
	case "editnote":
		_ = a.EditNote(ctx)
	case "delnote":
		_ = a.DeleteNote(ctx)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Comando desconocido:", cmd)
	}
}
