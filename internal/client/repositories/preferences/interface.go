package preferences

import "context"

// Repository is the Local Preference Store: string values by string key,
// persisted across restarts. Writes to different keys are independent.
type Repository interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// ClearKeys removes the given keys in one transaction.
	ClearKeys(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
