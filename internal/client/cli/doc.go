// Package cli provides the interactive Nospi terminal client.
//
// It wires configuration, the local preference store, the backend client and
// the session propagator, then lets the root router pick the first screen:
// the main tabs for a signed-in user, the welcome screen otherwise.
//
// Welcome commands:
//   - start: run the onboarding questionnaire and create the account
//   - login: sign in with phone or email
//
// Main commands:
//   - events, appointments, profile: switch tab
//   - notes, addnote, editnote, delnote: manage notes
//   - logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
