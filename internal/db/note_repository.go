package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NoteRepository struct {
	db *sqlx.DB
}

func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, card_id, user_id, updated_by, text, color, created_at, updated_at`

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `INSERT INTO notes (id, card_id, user_id, updated_by, text, color, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(
		ctx, query, note.ID, note.CardID, note.UserID, note.UpdatedBy, note.Text, note.Color,
		note.CreatedAt, note.UpdatedAt)
	return classify(err)
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note := &models.Note{}
	if err := r.db.GetContext(ctx, note, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

// Update writes text, color and the last editor.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `UPDATE notes SET text = $1, color = $2, updated_by = $3, updated_at = $4 WHERE id = $5`
	return checkAffected(r.db.ExecContext(
		ctx, query, note.Text, note.Color, note.UpdatedBy, note.UpdatedAt, note.ID))
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkAffected(r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id))
}

// ListByCard returns newest notes first.
func (r *NoteRepository) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE card_id = $1 ORDER BY created_at DESC`
	notes := []*models.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, cardID); err != nil {
		return nil, err
	}
	return notes, nil
}
