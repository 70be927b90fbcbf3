package service

import (
	"context"
	"strings"

	"github.com/chepyr/go-board-notes/internal/access"
	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BoardInput is the create/update form. Nil fields are left unchanged on
// update.
type BoardInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// ListBoards returns the actor's own boards followed by boards shared with
// them, each newest first.
func (s *Boards) ListBoards(ctx context.Context, actor uuid.UUID) ([]models.BoardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var owned, shared []*models.BoardWithCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.store.ListBoards(gctx, actor)
		return err
	})
	g.Go(func() error {
		var err error
		shared, err = s.store.ListSharedBoards(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owners, err := s.ownerNames(ctx, shared)
	if err != nil {
		return nil, err
	}

	out := make([]models.BoardSummary, 0, len(owned)+len(shared))
	for _, b := range owned {
		out = append(out, summarize(actor, b, nil, ""))
	}
	for _, b := range shared {
		grant := []models.SharedBoard{{BoardID: b.ID, UserID: actor}}
		out = append(out, summarize(actor, b, grant, owners[b.OwnerID]))
	}
	return out, nil
}

func summarize(actor uuid.UUID, b *models.BoardWithCount, shares []models.SharedBoard, ownerName string) models.BoardSummary {
	a := access.ResolveBoard(actor, &b.Board, shares)
	isOwner, isShared := access.Labels(a)
	return models.BoardSummary{
		Board:      b.Board,
		CardsCount: b.CardsCount,
		IsShared:   isShared,
		IsOwner:    isOwner,
		CanWrite:   a.CanWrite,
		OwnerName:  ownerName,
	}
}

// ownerNames looks up display names of the owners of shared boards in
// parallel through the cached identity lookup.
func (s *Boards) ownerNames(ctx context.Context, boards []*models.BoardWithCount) (map[uuid.UUID]string, error) {
	ids := make(map[uuid.UUID]struct{})
	for _, b := range boards {
		ids[b.OwnerID] = struct{}{}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	type result struct {
		id   uuid.UUID
		name string
	}
	results := make(chan result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for id := range ids {
		g.Go(func() error {
			user, err := s.store.GetUserByID(gctx, id)
			if apperr.KindOf(err) == apperr.KindNotFound {
				log.WithField("owner_id", id).Warn("board owner not found")
				return nil
			}
			if err != nil {
				return err
			}
			results <- result{id: id, name: user.Name}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for r := range results {
		names[r.id] = r.name
	}
	return names, nil
}

func (s *Boards) GetBoard(ctx context.Context, actor, boardID uuid.UUID) (*models.BoardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bc, err := s.readableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	var ownerName string
	if !bc.access.IsOwner {
		owner, err := s.store.GetUserByID(ctx, bc.board.OwnerID)
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
		if owner != nil {
			ownerName = owner.Name
		}
	}
	isOwner, isShared := access.Labels(bc.access)
	return &models.BoardSummary{
		Board:     *bc.board,
		IsShared:  isShared,
		IsOwner:   isOwner,
		CanWrite:  bc.access.CanWrite,
		OwnerName: ownerName,
	}, nil
}

func (s *Boards) CreateBoard(ctx context.Context, actor uuid.UUID, in BoardInput) (*models.Board, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperr.Validation("Board name is required and must be <= %d characters", maxNameLength)
	}
	name, err := normalizeName("Board name", *in.Name)
	if err != nil {
		return nil, err
	}
	color, err := normalizeColor(deref(in.Color))
	if err != nil {
		return nil, err
	}

	now := s.now()
	board := &models.Board{
		ID:        uuid.New(),
		OwnerID:   actor,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, actor)
	s.publish(EventBoardCreated, board.ID, board.ID)
	return board, nil
}

func (s *Boards) UpdateBoard(ctx context.Context, actor, boardID uuid.UUID, in BoardInput) (*models.Board, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	updated := models.Board{}
	if in.Name != nil {
		name, err := normalizeName("Board name", *in.Name)
		if err != nil {
			return nil, err
		}
		updated.Name = name
	}
	if in.Color != nil {
		color, err := normalizeColor(*in.Color)
		if err != nil {
			return nil, err
		}
		updated.Color = color
	}

	bc, err := s.writableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	board := *bc.board
	if in.Name != nil {
		board.Name = updated.Name
	}
	if in.Color != nil {
		board.Color = updated.Color
	}
	board.UpdatedAt = s.now()
	if err := s.store.UpdateBoard(ctx, &board); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, bc.audience()...)
	s.publish(EventBoardUpdated, board.ID, board.ID)
	return &board, nil
}

// DeleteBoard removes the board with its cards, notes and shares.
func (s *Boards) DeleteBoard(ctx context.Context, actor, boardID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	bc, err := s.writableBoard(ctx, actor, boardID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return err
	}
	s.store.Invalidate(ctx, bc.audience()...)
	s.publish(EventBoardDeleted, boardID, boardID)
	return nil
}

// ShareBoard grants read access to the user with the given email or
// username.
func (s *Boards) ShareBoard(ctx context.Context, actor, boardID uuid.UUID, emailOrUsername string) (*models.ShareView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	target := strings.TrimSpace(emailOrUsername)
	if target == "" {
		return nil, apperr.Validation("Email or username is required")
	}
	if strings.Contains(target, "@") {
		target = strings.ToLower(target)
	}

	bc, err := s.writableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByEmailOrUsername(ctx, target, actor)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	share := &models.SharedBoard{BoardID: boardID, UserID: user.ID, CreatedAt: s.now()}
	if err := s.store.CreateShare(ctx, share); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, user.ID)
	s.publish(EventShareAdded, bc.board.ID, user.ID)
	return &models.ShareView{BoardID: boardID, User: user.Profile(), CreatedAt: share.CreatedAt}, nil
}

// ListShares is visible to everyone who can read the board.
func (s *Boards) ListShares(ctx context.Context, actor, boardID uuid.UUID) ([]models.ShareView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bc, err := s.readableBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(bc.shares))
	for _, sh := range bc.shares {
		ids = append(ids, sh.UserID)
	}
	users, err := s.store.ListUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.ShareView, 0, len(bc.shares))
	for _, sh := range bc.shares {
		u, ok := byID[sh.UserID]
		if !ok {
			continue
		}
		out = append(out, models.ShareView{BoardID: sh.BoardID, User: u.Profile(), CreatedAt: sh.CreatedAt})
	}
	return out, nil
}

// UnshareBoard is allowed to the owner, or to a shared user removing
// themself.
func (s *Boards) UnshareBoard(ctx context.Context, actor, boardID, userID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	bc, err := s.loadBoard(ctx, actor, boardID)
	if err != nil {
		return err
	}
	if !bc.access.IsOwner && !(bc.access.CanRead && userID == actor) {
		return apperr.Forbidden("Only the board owner can remove access")
	}
	if err := s.store.DeleteShare(ctx, boardID, userID); err != nil {
		return err
	}
	s.store.Invalidate(ctx, userID)
	s.publish(EventShareRemoved, boardID, userID)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
