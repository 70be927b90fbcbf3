package service

import (
	"context"

	"github.com/chepyr/go-board-notes/internal/access"
	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

type CardInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Boards) ListCards(ctx context.Context, actor, boardID uuid.UUID) ([]models.CardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bc, err := s.readableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.ListCards(ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CardSummary, 0, len(cards))
	for _, c := range cards {
		out = append(out, models.CardSummary{
			Card:       c.Card,
			NotesCount: c.NotesCount,
			CanWrite:   access.ResolveCard(actor, &c.Card, bc.access).CanWrite,
		})
	}
	return out, nil
}

// loadCard returns the card with the resolved access of its board.
func (s *Boards) loadCard(ctx context.Context, actor, cardID uuid.UUID) (*models.Card, *boardContext, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}
	bc, err := s.loadBoard(ctx, actor, card.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return card, bc, nil
}

func (s *Boards) GetCard(ctx context.Context, actor, cardID uuid.UUID) (*models.CardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	card, bc, err := s.loadCard(ctx, actor, cardID)
	if err != nil {
		return nil, err
	}
	if !bc.access.CanRead {
		return nil, apperr.Forbidden("You do not have access to this board")
	}
	return &models.CardSummary{
		Card:     *card,
		CanWrite: access.ResolveCard(actor, card, bc.access).CanWrite,
	}, nil
}

func (s *Boards) CreateCard(ctx context.Context, actor, boardID uuid.UUID, in CardInput) (*models.Card, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperr.Validation("Card name is required and must be <= %d characters", maxNameLength)
	}
	name, err := normalizeName("Card name", *in.Name)
	if err != nil {
		return nil, err
	}
	color, err := normalizeColor(deref(in.Color))
	if err != nil {
		return nil, err
	}

	bc, err := s.writableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	card := &models.Card{
		ID:        uuid.New(),
		BoardID:   boardID,
		OwnerID:   bc.board.OwnerID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, bc.audience()...)
	s.publish(EventCardCreated, boardID, card.ID)
	return card, nil
}

func (s *Boards) UpdateCard(ctx context.Context, actor, cardID uuid.UUID, in CardInput) (*models.Card, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var name, color string
	var err error
	if in.Name != nil {
		if name, err = normalizeName("Card name", *in.Name); err != nil {
			return nil, err
		}
	}
	if in.Color != nil {
		if color, err = normalizeColor(*in.Color); err != nil {
			return nil, err
		}
	}

	card, bc, err := s.loadCard(ctx, actor, cardID)
	if err != nil {
		return nil, err
	}
	if !access.ResolveCard(actor, card, bc.access).CanWrite {
		return nil, apperr.Forbidden("Only the board owner can edit cards")
	}
	updated := *card
	if in.Name != nil {
		updated.Name = name
	}
	if in.Color != nil {
		updated.Color = color
	}
	updated.UpdatedAt = s.now()
	if err := s.store.UpdateCard(ctx, &updated); err != nil {
		return nil, err
	}
	s.publish(EventCardUpdated, updated.BoardID, updated.ID)
	return &updated, nil
}

// DeleteCard removes the card and its notes.
func (s *Boards) DeleteCard(ctx context.Context, actor, cardID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	card, bc, err := s.loadCard(ctx, actor, cardID)
	if err != nil {
		return err
	}
	if !access.ResolveCard(actor, card, bc.access).CanWrite {
		return apperr.Forbidden("Only the board owner can delete cards")
	}
	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return err
	}
	s.store.Invalidate(ctx, bc.audience()...)
	s.publish(EventCardDeleted, card.BoardID, card.ID)
	return nil
}
