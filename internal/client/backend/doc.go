// Package backend is the client's only gateway to the hosted backend.
//
// # Overview
//
// Client is the transport-agnostic contract the rest of the application
// depends on: session retrieval, a session-change feed, sign-in/up/out,
// profile updates, and single-round-trip CRUD on the notes table.
// HTTPClient implements it against GoTrue-style auth endpoints
// (/auth/v1/...) and a PostgREST-style data API (/rest/v1/...).
//
// # Sessions
//
// The current session is cached in memory and mirrored to the preference
// store so it survives restarts. An expired access token is refreshed once
// before an authenticated call. Every session change is published on the Hub
// in the order it happened.
//
// # Error Handling
//
// HTTP failures are mapped to sentinel errors matched with errors.Is:
// ErrUnavailable, common.ErrUnauthorized, common.ErrNotFound. Other non-2xx
// responses surface as *APIError. No call is ever retried.
package backend
