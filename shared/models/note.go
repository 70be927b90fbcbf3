package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	CardID    uuid.UUID     `json:"card_id" db:"card_id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	UpdatedBy uuid.NullUUID `json:"updated_by" db:"updated_by"`
	Text      string        `json:"text" db:"text"`
	Color     string        `json:"color" db:"color"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// NoteView carries author names only when the board is shared.
type NoteView struct {
	Note
	AuthorName string `json:"author_name,omitempty"`
	EditorName string `json:"editor_name,omitempty"`
	CanWrite   bool   `json:"can_write"`
}
