package service

import (
	"context"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

func (s *Boards) Profile(ctx context.Context, actor uuid.UUID) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, actor)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// UpdateProfileName changes the display name shown to the user and to
// everyone their boards are shared with.
func (s *Boards) UpdateProfileName(ctx context.Context, actor uuid.UUID, name string) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name, err := normalizeName("Name", name)
	if err != nil {
		return nil, err
	}
	user := &models.User{ID: actor, Name: name, UpdatedAt: s.now()}
	if err := s.store.UpdateUserName(ctx, user); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, actor)
	return s.Profile(ctx, actor)
}
