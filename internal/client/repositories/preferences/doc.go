// Package preferences is the client's local key/value store.
//
// Onboarding answers (gender, interest, age range, name, phone, photo) and the
// persisted backend session live here, one row per key, in the SQLite table
// created by internal/client/migrations. Each Set is an upsert and stands on
// its own; no consistency between keys is enforced.
//
// Typical usage
//
//	repo := preferences.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "userName", "Ana")
//	v, ok, _ := repo.Get(ctx, "userName")
package preferences
