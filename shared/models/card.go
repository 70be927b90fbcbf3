package models

import (
	"time"

	"github.com/google/uuid"
)

// Card belongs to exactly one board. OwnerID mirrors the board owner at
// creation time and is display data only.
type Card struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BoardID   uuid.UUID `json:"board_id" db:"board_id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CardWithCount struct {
	Card
	NotesCount int `json:"notes_count" db:"notes_count"`
}

type CardSummary struct {
	Card
	NotesCount int  `json:"notes_count"`
	CanWrite   bool `json:"can_write"`
}
