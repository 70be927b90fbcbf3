package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BoardRepository struct {
	db *sqlx.DB
}

func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

const boardCountColumns = `b.id, b.owner_id, b.name, b.color, b.created_at, b.updated_at,
	 (SELECT COUNT(*) FROM cards c WHERE c.board_id = b.id) AS cards_count`

func (r *BoardRepository) Create(ctx context.Context, board *models.Board) error {
	query := `INSERT INTO boards (id, owner_id, name, color, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query, board.ID, board.OwnerID, board.Name, board.Color,
		board.CreatedAt, board.UpdatedAt)
	return classify(err)
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	query := `SELECT id, owner_id, name, color, created_at, updated_at
	 FROM boards WHERE id = $1`
	board := &models.Board{}
	if err := r.db.GetContext(ctx, board, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return board, nil
}

// Delete removes the board; cards, notes and shares go with it.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkAffected(r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id))
}

// Update writes name and color. Owner never changes.
func (r *BoardRepository) Update(ctx context.Context, board *models.Board) error {
	query := `UPDATE boards SET name = $1, color = $2, updated_at = $3 WHERE id = $4`
	return checkAffected(r.db.ExecContext(ctx, query, board.Name, board.Color, board.UpdatedAt, board.ID))
}

func (r *BoardRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.BoardWithCount, error) {
	query := `SELECT ` + boardCountColumns + `
	 FROM boards b WHERE b.owner_id = $1 ORDER BY b.created_at DESC`
	boards := []*models.BoardWithCount{}
	if err := r.db.SelectContext(ctx, &boards, query, ownerID); err != nil {
		return nil, err
	}
	return boards, nil
}

// ListSharedWith returns boards other users shared with userID.
func (r *BoardRepository) ListSharedWith(ctx context.Context, userID uuid.UUID) ([]*models.BoardWithCount, error) {
	query := `SELECT ` + boardCountColumns + `
	 FROM boards b JOIN shared_boards s ON s.board_id = b.id
	 WHERE s.user_id = $1 ORDER BY b.created_at DESC`
	boards := []*models.BoardWithCount{}
	if err := r.db.SelectContext(ctx, &boards, query, userID); err != nil {
		return nil, err
	}
	return boards, nil
}
