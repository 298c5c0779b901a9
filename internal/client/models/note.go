package models

import "time"

// Note is the example row type stored in the remote notes table.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
}

// NewNote is the insert payload; the backend assigns id and timestamps.
type NewNote struct {
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
	UserID  string  `json:"user_id"`
}

// NotePatch is a partial update. Nil fields are left untouched.
type NotePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}
