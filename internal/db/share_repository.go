package db

import (
	"context"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create fails with ErrDuplicate when the pair already exists.
func (r *ShareRepository) Create(ctx context.Context, share *models.SharedBoard) error {
	query := `INSERT INTO shared_boards (board_id, user_id, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, share.BoardID, share.UserID, share.CreatedAt)
	return classify(err)
}

func (r *ShareRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.SharedBoard, error) {
	query := `SELECT board_id, user_id, created_at FROM shared_boards
	 WHERE board_id = $1 ORDER BY created_at`
	shares := []models.SharedBoard{}
	if err := r.db.SelectContext(ctx, &shares, query, boardID); err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *ShareRepository) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	query := `DELETE FROM shared_boards WHERE board_id = $1 AND user_id = $2`
	return checkAffected(r.db.ExecContext(ctx, query, boardID, userID))
}
