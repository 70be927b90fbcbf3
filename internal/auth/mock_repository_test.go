package auth

import (
	"context"
	"sync"

	"github.com/chepyr/go-board-notes/internal/db"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

type MockUserRepository struct {
	users     map[uuid.UUID]*models.User
	createErr error
	getErr    error
	mutex     sync.Mutex
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return db.ErrDuplicate
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *MockUserRepository) GetByLogin(_ context.Context, login string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == login || u.Username == login })
}

func (m *MockUserRepository) FindByEmailOrUsername(_ context.Context, value string, excluding uuid.UUID) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return (u.Email == value || u.Username == value) && u.ID != excluding
	})
}

func (m *MockUserRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var out []*models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockUserRepository) UpdateName(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	u, ok := m.users[user.ID]
	if !ok {
		return db.ErrNotFound
	}
	u.Name = user.Name
	u.UpdatedAt = user.UpdatedAt
	return nil
}

func (m *MockUserRepository) UpdatePassword(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	u, ok := m.users[user.ID]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = user.PasswordHash
	u.UpdatedAt = user.UpdatedAt
	return nil
}
