package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `INSERT INTO cards (id, board_id, owner_id, name, color, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx, query, card.ID, card.BoardID, card.OwnerID, card.Name, card.Color,
		card.CreatedAt, card.UpdatedAt)
	return classify(err)
}

func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	query := `SELECT id, board_id, owner_id, name, color, created_at, updated_at
	 FROM cards WHERE id = $1`
	card := &models.Card{}
	if err := r.db.GetContext(ctx, card, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return card, nil
}

// Update writes name and color; board_id is fixed at creation.
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	query := `UPDATE cards SET name = $1, color = $2, updated_at = $3 WHERE id = $4`
	return checkAffected(r.db.ExecContext(ctx, query, card.Name, card.Color, card.UpdatedAt, card.ID))
}

func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkAffected(r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id))
}

func (r *CardRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*models.CardWithCount, error) {
	query := `SELECT c.id, c.board_id, c.owner_id, c.name, c.color, c.created_at, c.updated_at,
	 (SELECT COUNT(*) FROM notes n WHERE n.card_id = c.id) AS notes_count
	 FROM cards c WHERE c.board_id = $1 ORDER BY c.created_at`
	cards := []*models.CardWithCount{}
	if err := r.db.SelectContext(ctx, &cards, query, boardID); err != nil {
		return nil, err
	}
	return cards, nil
}
