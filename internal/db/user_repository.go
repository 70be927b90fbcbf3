package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// defines methods for user db operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, value string, excluding uuid.UUID) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	UpdateName(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, user *models.User) error
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, username, email, password_hash, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, name, username, email, password_hash, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx, query, user.ID, user.Name, user.Username, user.Email, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt)
	return classify(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByLogin accepts either an email or a username.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1`, login)
}

// FindByEmailOrUsername looks up a user to share with; the acting user is
// never returned.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, value string, excluding uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	 WHERE (email = $1 OR username = $1) AND id <> $2`
	return r.getOne(ctx, query, value, excluding)
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $1, updated_at = $2 WHERE id = $3`
	return checkAffected(r.db.ExecContext(ctx, query, user.Name, user.UpdatedAt, user.ID))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	return checkAffected(r.db.ExecContext(ctx, query, user.PasswordHash, user.UpdatedAt, user.ID))
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
