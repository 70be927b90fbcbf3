// Package service applies the access rules to every board, card and note
// operation: it resolves what the actor may do from freshly loaded rows,
// performs the change, then invalidates cached views and publishes an event
// so open clients re-fetch.
package service

import (
	"context"
	"time"

	"github.com/chepyr/go-board-notes/internal/access"
	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/internal/store"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

// Event names published after successful mutations.
const (
	EventBoardCreated = "board.created"
	EventBoardUpdated = "board.updated"
	EventBoardDeleted = "board.deleted"
	EventShareAdded   = "share.added"
	EventShareRemoved = "share.removed"
	EventCardCreated  = "card.created"
	EventCardUpdated  = "card.updated"
	EventCardDeleted  = "card.deleted"
	EventNoteCreated  = "note.created"
	EventNoteUpdated  = "note.updated"
	EventNoteDeleted  = "note.deleted"
)

// Event tells subscribers of a board that something changed. It carries ids
// only; clients re-fetch what they display.
type Event struct {
	Name    string    `json:"event"`
	BoardID uuid.UUID `json:"board_id"`
	ID      uuid.UUID `json:"id"`
}

type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

type Boards struct {
	store  store.Store
	events Publisher
	now    func() time.Time
}

func NewBoards(s store.Store, events Publisher) *Boards {
	if events == nil {
		events = nopPublisher{}
	}
	return &Boards{store: s, events: events, now: func() time.Time { return time.Now().UTC() }}
}

// boardContext is a board with the rows its access was resolved from.
type boardContext struct {
	board  *models.Board
	shares []models.SharedBoard
	access access.BoardAccess
}

// audience is every user whose listings can show this board.
func (b *boardContext) audience() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.shares)+1)
	ids = append(ids, b.board.OwnerID)
	for _, s := range b.shares {
		ids = append(ids, s.UserID)
	}
	return ids
}

func requireActor(actor uuid.UUID) error {
	if access.IsAnonymous(actor) {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// loadBoard reads the board and its shares from the store, never from cache,
// and resolves the actor's access. Lookup failures are returned unchanged.
func (s *Boards) loadBoard(ctx context.Context, actor, boardID uuid.UUID) (*boardContext, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	shares, err := s.store.ListShares(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return &boardContext{
		board:  board,
		shares: shares,
		access: access.ResolveBoard(actor, board, shares),
	}, nil
}

func (s *Boards) readableBoard(ctx context.Context, actor, boardID uuid.UUID) (*boardContext, error) {
	bc, err := s.loadBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !bc.access.CanRead {
		return nil, apperr.Forbidden("You do not have access to this board")
	}
	return bc, nil
}

func (s *Boards) writableBoard(ctx context.Context, actor, boardID uuid.UUID) (*boardContext, error) {
	bc, err := s.loadBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !bc.access.CanWrite {
		return nil, apperr.Forbidden("Only the board owner can do this")
	}
	return bc, nil
}

func (s *Boards) publish(name string, boardID, id uuid.UUID) {
	s.events.Publish(Event{Name: name, BoardID: boardID, ID: id})
}
