// Package store is the record store the application layer talks to. SQL
// errors are translated into apperr kinds here so callers never see driver
// details.
package store

import (
	"context"
	"errors"

	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/internal/db"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Invalidator drops cached views derived from the given users' data. It is
// called after every mutation that can change what those users see.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...uuid.UUID)
}

// Store is the record store. Users it returns never carry password hashes.
type Store interface {
	Invalidator

	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmailOrUsername(ctx context.Context, value string, excluding uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	UpdateUserName(ctx context.Context, user *models.User) error

	ListBoards(ctx context.Context, ownerID uuid.UUID) ([]*models.BoardWithCount, error)
	ListSharedBoards(ctx context.Context, userID uuid.UUID) ([]*models.BoardWithCount, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error)
	CreateBoard(ctx context.Context, board *models.Board) error
	UpdateBoard(ctx context.Context, board *models.Board) error
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	ListShares(ctx context.Context, boardID uuid.UUID) ([]models.SharedBoard, error)
	CreateShare(ctx context.Context, share *models.SharedBoard) error
	DeleteShare(ctx context.Context, boardID, userID uuid.UUID) error

	ListCards(ctx context.Context, boardID uuid.UUID) ([]*models.CardWithCount, error)
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	CreateCard(ctx context.Context, card *models.Card) error
	UpdateCard(ctx context.Context, card *models.Card) error
	DeleteCard(ctx context.Context, id uuid.UUID) error

	ListNotes(ctx context.Context, cardID uuid.UUID) ([]*models.Note, error)
	GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error)
	CreateNote(ctx context.Context, note *models.Note) error
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

type SQLStore struct {
	users  *db.UserRepository
	boards *db.BoardRepository
	shares *db.ShareRepository
	cards  *db.CardRepository
	notes  *db.NoteRepository
}

func NewSQLStore(conn *sqlx.DB) *SQLStore {
	return &SQLStore{
		users:  db.NewUserRepository(conn),
		boards: db.NewBoardRepository(conn),
		shares: db.NewShareRepository(conn),
		cards:  db.NewCardRepository(conn),
		notes:  db.NewNoteRepository(conn),
	}
}

// Invalidate is a no-op: nothing is cached at this level.
func (s *SQLStore) Invalidate(context.Context, ...uuid.UUID) {}

func (s *SQLStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *SQLStore) FindUserByEmailOrUsername(ctx context.Context, value string, excluding uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByEmailOrUsername(ctx, value, excluding)
	if err != nil {
		return nil, translate(err, "user")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *SQLStore) ListUsers(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "users")
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}

func (s *SQLStore) UpdateUserName(ctx context.Context, user *models.User) error {
	return translate(s.users.UpdateName(ctx, user), "user")
}

func (s *SQLStore) ListBoards(ctx context.Context, ownerID uuid.UUID) ([]*models.BoardWithCount, error) {
	boards, err := s.boards.ListByOwner(ctx, ownerID)
	return boards, translate(err, "boards")
}

func (s *SQLStore) ListSharedBoards(ctx context.Context, userID uuid.UUID) ([]*models.BoardWithCount, error) {
	boards, err := s.boards.ListSharedWith(ctx, userID)
	return boards, translate(err, "shared boards")
}

func (s *SQLStore) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	board, err := s.boards.GetByID(ctx, id)
	return board, translate(err, "board")
}

func (s *SQLStore) CreateBoard(ctx context.Context, board *models.Board) error {
	return translate(s.boards.Create(ctx, board), "board")
}

func (s *SQLStore) UpdateBoard(ctx context.Context, board *models.Board) error {
	return translate(s.boards.Update(ctx, board), "board")
}

func (s *SQLStore) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	return translate(s.boards.Delete(ctx, id), "board")
}

func (s *SQLStore) ListShares(ctx context.Context, boardID uuid.UUID) ([]models.SharedBoard, error) {
	shares, err := s.shares.ListByBoard(ctx, boardID)
	return shares, translate(err, "shares")
}

func (s *SQLStore) CreateShare(ctx context.Context, share *models.SharedBoard) error {
	err := s.shares.Create(ctx, share)
	if errors.Is(err, db.ErrDuplicate) {
		return apperr.Conflict("board is already shared with this user")
	}
	return translate(err, "share")
}

func (s *SQLStore) DeleteShare(ctx context.Context, boardID, userID uuid.UUID) error {
	return translate(s.shares.Delete(ctx, boardID, userID), "share")
}

func (s *SQLStore) ListCards(ctx context.Context, boardID uuid.UUID) ([]*models.CardWithCount, error) {
	cards, err := s.cards.ListByBoard(ctx, boardID)
	return cards, translate(err, "cards")
}

func (s *SQLStore) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	return card, translate(err, "card")
}

func (s *SQLStore) CreateCard(ctx context.Context, card *models.Card) error {
	return translate(s.cards.Create(ctx, card), "card")
}

func (s *SQLStore) UpdateCard(ctx context.Context, card *models.Card) error {
	return translate(s.cards.Update(ctx, card), "card")
}

func (s *SQLStore) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return translate(s.cards.Delete(ctx, id), "card")
}

func (s *SQLStore) ListNotes(ctx context.Context, cardID uuid.UUID) ([]*models.Note, error) {
	notes, err := s.notes.ListByCard(ctx, cardID)
	return notes, translate(err, "notes")
}

func (s *SQLStore) GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	return note, translate(err, "note")
}

func (s *SQLStore) CreateNote(ctx context.Context, note *models.Note) error {
	return translate(s.notes.Create(ctx, note), "note")
}

func (s *SQLStore) UpdateNote(ctx context.Context, note *models.Note) error {
	return translate(s.notes.Update(ctx, note), "note")
}

func (s *SQLStore) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return translate(s.notes.Delete(ctx, id), "note")
}

func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrMissingParent):
		return apperr.NotFound(entity + " not found")
	case errors.Is(err, db.ErrDuplicate):
		return apperr.Conflict(entity + " already exists")
	default:
		return apperr.Backend("failed to access "+entity, err)
	}
}
