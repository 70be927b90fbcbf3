package models

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SharedBoard grants a non-owner read access to a board.
type SharedBoard struct {
	BoardID   uuid.UUID `json:"board_id" db:"board_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BoardWithCount is a board row joined with the number of its cards.
type BoardWithCount struct {
	Board
	CardsCount int `json:"cards_count" db:"cards_count"`
}

// BoardSummary is what the boards list shows for one board.
type BoardSummary struct {
	Board
	CardsCount int    `json:"cards_count"`
	IsShared   bool   `json:"is_shared"`
	IsOwner    bool   `json:"is_owner"`
	CanWrite   bool   `json:"can_write"`
	OwnerName  string `json:"owner_name"`
}

// ShareView is a share entry with the grantee's public profile.
type ShareView struct {
	BoardID   uuid.UUID `json:"board_id"`
	User      Profile   `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
