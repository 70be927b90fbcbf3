package access

import (
	"testing"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	alice, bob, carol, dave uuid.UUID
	board                   *models.Board
}

func newFixture() fixture {
	f := fixture{
		alice: uuid.New(),
		bob:   uuid.New(),
		carol: uuid.New(),
		dave:  uuid.New(),
	}
	f.board = &models.Board{ID: uuid.New(), OwnerID: f.alice, Name: "Plans"}
	return f
}

func TestResolveBoard(t *testing.T) {
	f := newFixture()
	otherBoard := uuid.New()

	tests := []struct {
		name   string
		actor  uuid.UUID
		shares []models.SharedBoard
		want   BoardAccess
	}{
		{
			name:  "owner without shares",
			actor: f.alice,
			want:  BoardAccess{IsOwner: true, CanRead: true, CanWrite: true},
		},
		{
			name:  "stranger without shares",
			actor: f.bob,
			want:  BoardAccess{},
		},
		{
			name:   "shared user reads but cannot write",
			actor:  f.bob,
			shares: []models.SharedBoard{{BoardID: f.board.ID, UserID: f.bob}},
			want:   BoardAccess{CanRead: true},
		},
		{
			name:   "share for another board does not count",
			actor:  f.bob,
			shares: []models.SharedBoard{{BoardID: otherBoard, UserID: f.bob}},
			want:   BoardAccess{},
		},
		{
			name:   "share for another user does not count",
			actor:  f.dave,
			shares: []models.SharedBoard{{BoardID: f.board.ID, UserID: f.bob}},
			want:   BoardAccess{},
		},
		{
			name:   "owner listed in shares is still owner",
			actor:  f.alice,
			shares: []models.SharedBoard{{BoardID: f.board.ID, UserID: f.alice}},
			want:   BoardAccess{IsOwner: true, CanRead: true, CanWrite: true},
		},
		{
			name:   "anonymous gets nothing even with a nil share",
			actor:  Anonymous,
			shares: []models.SharedBoard{{BoardID: f.board.ID, UserID: uuid.Nil}},
			want:   BoardAccess{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBoard(tt.actor, f.board, tt.shares))
		})
	}
}

func TestResolveBoard_OnlyOwnerWrites(t *testing.T) {
	f := newFixture()
	shares := []models.SharedBoard{
		{BoardID: f.board.ID, UserID: f.bob},
		{BoardID: f.board.ID, UserID: f.carol},
		{BoardID: f.board.ID, UserID: f.dave},
	}
	for _, u := range []uuid.UUID{f.bob, f.carol, f.dave} {
		got := ResolveBoard(u, f.board, shares)
		assert.True(t, got.CanRead)
		assert.False(t, got.CanWrite)
		assert.False(t, got.IsOwner)
	}
}

func TestResolveBoard_NilBoard(t *testing.T) {
	f := newFixture()
	assert.Equal(t, BoardAccess{}, ResolveBoard(f.alice, nil, nil))
}

func TestResolveBoard_Idempotent(t *testing.T) {
	f := newFixture()
	shares := []models.SharedBoard{{BoardID: f.board.ID, UserID: f.bob}}
	first := ResolveBoard(f.bob, f.board, shares)
	second := ResolveBoard(f.bob, f.board, shares)
	assert.Equal(t, first, second)
}

func TestResolveCard(t *testing.T) {
	f := newFixture()
	// card.OwnerID points at bob; only board ownership matters
	card := &models.Card{ID: uuid.New(), BoardID: f.board.ID, OwnerID: f.bob}
	shares := []models.SharedBoard{{BoardID: f.board.ID, UserID: f.bob}}

	owner := ResolveBoard(f.alice, f.board, shares)
	shared := ResolveBoard(f.bob, f.board, shares)

	assert.Equal(t, CardAccess{CanWrite: true}, ResolveCard(f.alice, card, owner))
	assert.Equal(t, CardAccess{CanWrite: false}, ResolveCard(f.bob, card, shared))
	assert.Equal(t, CardAccess{}, ResolveCard(Anonymous, card, owner))
	assert.Equal(t, CardAccess{}, ResolveCard(f.alice, nil, owner))
}

func TestResolveNote(t *testing.T) {
	f := newFixture()
	note := &models.Note{ID: uuid.New(), UserID: f.carol, Text: "hi"}

	t.Run("reader edits someone else's note", func(t *testing.T) {
		assert.Equal(t, NoteAccess{CanWrite: true}, ResolveNote(f.bob, note, BoardAccess{CanRead: true}))
	})
	t.Run("non reader cannot", func(t *testing.T) {
		assert.Equal(t, NoteAccess{CanWrite: false}, ResolveNote(f.dave, note, BoardAccess{CanRead: false}))
	})
	t.Run("author always can", func(t *testing.T) {
		assert.Equal(t, NoteAccess{CanWrite: true}, ResolveNote(f.carol, note, BoardAccess{}))
	})
	t.Run("anonymous never can", func(t *testing.T) {
		assert.Equal(t, NoteAccess{}, ResolveNote(Anonymous, note, BoardAccess{IsOwner: true, CanRead: true, CanWrite: true}))
	})
	t.Run("anonymous author id does not match anonymous actor", func(t *testing.T) {
		orphan := &models.Note{ID: uuid.New(), UserID: uuid.Nil}
		assert.Equal(t, NoteAccess{}, ResolveNote(Anonymous, orphan, BoardAccess{}))
	})
}

func TestLabels(t *testing.T) {
	isOwner, isShared := Labels(BoardAccess{IsOwner: true, CanRead: true, CanWrite: true})
	assert.True(t, isOwner)
	assert.False(t, isShared)

	isOwner, isShared = Labels(BoardAccess{CanRead: true})
	assert.False(t, isOwner)
	assert.True(t, isShared)

	isOwner, isShared = Labels(BoardAccess{})
	assert.False(t, isOwner)
	assert.False(t, isShared)
}
