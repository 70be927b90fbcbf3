// Package access decides what a user may do with a board, a card or a note.
//
// Every function here is pure: results depend only on the arguments, so the
// caller is responsible for passing board and share rows fetched for the
// current request rather than copies kept from an earlier one. An anonymous
// actor (uuid.Nil) is never granted anything; callers should treat that case
// as "not signed in" and not as a permission denial.
package access

import (
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

// Anonymous is the actor used when no user is signed in.
var Anonymous = uuid.Nil

type BoardAccess struct {
	IsOwner  bool `json:"is_owner"`
	CanRead  bool `json:"can_read"`
	CanWrite bool `json:"can_write"`
}

type CardAccess struct {
	CanWrite bool `json:"can_write"`
}

type NoteAccess struct {
	CanWrite bool `json:"can_write"`
}

// IsAnonymous reports whether actor identifies no user.
func IsAnonymous(actor uuid.UUID) bool {
	return actor == Anonymous
}

// ResolveBoard grants read to the owner and to users with a share entry for
// this board. Only the owner may write; sharing never grants write.
func ResolveBoard(actor uuid.UUID, board *models.Board, shares []models.SharedBoard) BoardAccess {
	if IsAnonymous(actor) || board == nil {
		return BoardAccess{}
	}
	isOwner := board.OwnerID == actor
	canRead := isOwner
	if !canRead {
		for _, s := range shares {
			if s.BoardID == board.ID && s.UserID == actor {
				canRead = true
				break
			}
		}
	}
	return BoardAccess{IsOwner: isOwner, CanRead: canRead, CanWrite: isOwner}
}

// ResolveCard gates card writes on board ownership alone. card.OwnerID is
// denormalized display data and is ignored.
func ResolveCard(actor uuid.UUID, card *models.Card, board BoardAccess) CardAccess {
	if IsAnonymous(actor) || card == nil {
		return CardAccess{}
	}
	return CardAccess{CanWrite: board.IsOwner}
}

// ResolveNote lets the author, or anyone who can read the board, edit or
// delete the note.
func ResolveNote(actor uuid.UUID, note *models.Note, board BoardAccess) NoteAccess {
	if IsAnonymous(actor) || note == nil {
		return NoteAccess{}
	}
	return NoteAccess{CanWrite: note.UserID == actor || board.CanRead}
}

// Labels returns the ownership labels shown next to a board.
func Labels(a BoardAccess) (isOwner, isShared bool) {
	return a.IsOwner, a.CanRead && !a.IsOwner
}
