package service

import (
	"context"

	"github.com/chepyr/go-board-notes/internal/access"
	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

type NoteInput struct {
	Text  *string `json:"text"`
	Color *string `json:"color"`
}

// ListNotes returns the card's notes newest first. Author and editor names
// are filled in only when the board is shared with someone.
func (s *Boards) ListNotes(ctx context.Context, actor, cardID uuid.UUID) ([]models.NoteView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, bc, err := s.loadCard(ctx, actor, cardID)
	if err != nil {
		return nil, err
	}
	if !bc.access.CanRead {
		return nil, apperr.Forbidden("You do not have access to this board")
	}
	notes, err := s.store.ListNotes(ctx, cardID)
	if err != nil {
		return nil, err
	}

	var names map[uuid.UUID]string
	if len(bc.shares) > 0 {
		if names, err = s.noteUserNames(ctx, notes); err != nil {
			return nil, err
		}
	}

	out := make([]models.NoteView, 0, len(notes))
	for _, n := range notes {
		view := models.NoteView{
			Note:     *n,
			CanWrite: access.ResolveNote(actor, n, bc.access).CanWrite,
		}
		if names != nil {
			view.AuthorName = names[n.UserID]
			if n.UpdatedBy.Valid {
				view.EditorName = names[n.UpdatedBy.UUID]
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Boards) noteUserNames(ctx context.Context, notes []*models.Note) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, n := range notes {
		add(n.UserID)
		if n.UpdatedBy.Valid {
			add(n.UpdatedBy.UUID)
		}
	}
	users, err := s.store.ListUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// CreateNote needs read access to the card's board.
func (s *Boards) CreateNote(ctx context.Context, actor, cardID uuid.UUID, in NoteInput) (*models.Note, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	text, err := normalizeText(deref(in.Text))
	if err != nil {
		return nil, err
	}
	color, err := normalizeColor(deref(in.Color))
	if err != nil {
		return nil, err
	}

	card, bc, err := s.loadCard(ctx, actor, cardID)
	if err != nil {
		return nil, err
	}
	if !bc.access.CanRead {
		return nil, apperr.Forbidden("You have no rights to add notes to this card")
	}
	now := s.now()
	note := &models.Note{
		ID:        uuid.New(),
		CardID:    card.ID,
		UserID:    actor,
		Text:      text,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	s.publish(EventNoteCreated, card.BoardID, note.ID)
	return note, nil
}

// loadNote returns the note, the board id it lives on and the actor's note
// access.
func (s *Boards) loadNote(ctx context.Context, actor, noteID uuid.UUID) (*models.Note, uuid.UUID, access.NoteAccess, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, uuid.Nil, access.NoteAccess{}, err
	}
	card, bc, err := s.loadCard(ctx, actor, note.CardID)
	if err != nil {
		return nil, uuid.Nil, access.NoteAccess{}, err
	}
	return note, card.BoardID, access.ResolveNote(actor, note, bc.access), nil
}

// UpdateNote records the actor as the last editor.
func (s *Boards) UpdateNote(ctx context.Context, actor, noteID uuid.UUID, in NoteInput) (*models.Note, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var text, color string
	var err error
	if in.Text != nil {
		if text, err = normalizeText(*in.Text); err != nil {
			return nil, err
		}
	}
	if in.Color != nil {
		if color, err = normalizeColor(*in.Color); err != nil {
			return nil, err
		}
	}

	note, boardID, na, err := s.loadNote(ctx, actor, noteID)
	if err != nil {
		return nil, err
	}
	if !na.CanWrite {
		return nil, apperr.Forbidden("You cannot edit this note")
	}
	updated := *note
	if in.Text != nil {
		updated.Text = text
	}
	if in.Color != nil {
		updated.Color = color
	}
	updated.UpdatedBy = uuid.NullUUID{UUID: actor, Valid: true}
	updated.UpdatedAt = s.now()
	if err := s.store.UpdateNote(ctx, &updated); err != nil {
		return nil, err
	}
	s.publish(EventNoteUpdated, boardID, updated.ID)
	return &updated, nil
}

func (s *Boards) DeleteNote(ctx context.Context, actor, noteID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	note, boardID, na, err := s.loadNote(ctx, actor, noteID)
	if err != nil {
		return err
	}
	if !na.CanWrite {
		return apperr.Forbidden("You cannot delete this note")
	}
	if err := s.store.DeleteNote(ctx, note.ID); err != nil {
		return err
	}
	s.publish(EventNoteDeleted, boardID, note.ID)
	return nil
}
