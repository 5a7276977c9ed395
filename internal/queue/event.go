// Package queue defines message payloads exchanged over the message broker.
package queue

// ImportCompletedEvent is published after a CSV import run finishes. It
// carries enough information for downstream consumers to log or notify
// without querying the document store.
type ImportCompletedEvent struct {
	Kind        string `json:"kind"` // "library" or "history"
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email"`
	RowsTotal   int    `json:"rows_total"`
	RowsMatched int    `json:"rows_matched"` // history imports only
	SongsAdded  int    `json:"songs_added"`  // library imports only
	CompletedAt string `json:"completed_at"`
}
