package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
)

func TestBoardsRequireAuth(t *testing.T) {
	e := newTestEnv(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/boards"},
		{http.MethodPost, "/boards"},
		{http.MethodGet, "/boards/" + uuid.NewString()},
		{http.MethodGet, "/cards/" + uuid.NewString() + "/notes"},
		{http.MethodDelete, "/notes/" + uuid.NewString()},
		{http.MethodGet, "/profile"},
	}
	for _, p := range paths {
		if rec := do(t, e.boards, p.method, p.path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: want 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestCreateBoard(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signUp(t, "alice")

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"Success", `{"name":"Plans","color":"#00FF00"}`, http.StatusCreated, `"color":"#00ff00"`},
		{"Default color", `{"name":"Plans"}`, http.StatusCreated, `"color":"#ffffff"`},
		{"Missing name", `{}`, http.StatusBadRequest, `"error":"Board name is required`},
		{"Name too long", `{"name":"` + strings.Repeat("x", 101) + `"}`, http.StatusBadRequest, `must be <= 100 characters`},
		{"Bad color", `{"name":"Plans","color":"green"}`, http.StatusBadRequest, `"error":"Color must look like`},
		{"Bad JSON", `{"name":`, http.StatusBadRequest, `"error":"Invalid JSON body"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e.boards, http.MethodPost, "/boards", alice.Token, tt.body)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("want %d, got %d body=%s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
			if rec.Code == http.StatusCreated {
				board := decode[models.Board](t, rec)
				if loc := rec.Header().Get("Location"); loc != "/boards/"+board.ID.String() {
					t.Errorf("Location = %q", loc)
				}
			}
		})
	}
}

func TestInvalidIDs(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signUp(t, "alice")

	tests := []struct{ method, path, want string }{
		{http.MethodGet, "/boards/not-a-uuid", "Invalid board ID"},
		{http.MethodGet, "/cards/not-a-uuid", "Invalid card ID"},
		{http.MethodDelete, "/notes/not-a-uuid", "Invalid note ID"},
		{http.MethodDelete, "/boards/" + uuid.NewString() + "/shares/nope", "Invalid user ID"},
	}
	for _, tt := range tests {
		rec := do(t, e.boards, tt.method, tt.path, alice.Token, "")
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s %s: got %d %s", tt.method, tt.path, rec.Code, rec.Body.String())
		}
	}
	if rec := do(t, e.boards, http.MethodGet, "/boards/"+uuid.NewString(), alice.Token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown board: want 404, got %d", rec.Code)
	}
}

// walks the sharing scenario end to end over HTTP
func TestSharingFlow(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signUp(t, "alice")
	bob := e.signUp(t, "bob")

	rec := do(t, e.boards, http.MethodPost, "/boards", alice.Token, `{"name":"Plans"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create board: %d %s", rec.Code, rec.Body.String())
	}
	board := decode[models.Board](t, rec)
	boardPath := "/boards/" + board.ID.String()

	if rec := do(t, e.boards, http.MethodGet, boardPath, bob.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger get board: want 403, got %d", rec.Code)
	}

	rec = do(t, e.boards, http.MethodPost, boardPath+"/cards", alice.Token, `{"name":"Ideas"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card: %d %s", rec.Code, rec.Body.String())
	}
	card := decode[models.Card](t, rec)
	cardPath := "/cards/" + card.ID.String()

	rec = do(t, e.boards, http.MethodPost, boardPath+"/shares", alice.Token, `{"user":"bob@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("share: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e.boards, http.MethodPost, boardPath+"/shares", alice.Token, `{"user":"bob"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate share: want 409, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodPost, boardPath+"/shares", alice.Token, `{"user":"nobody"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: want 404, got %d", rec.Code)
	}

	rec = do(t, e.boards, http.MethodGet, "/boards", bob.Token, "")
	boards := decode[[]models.BoardSummary](t, rec)
	if len(boards) != 1 || !boards[0].IsShared || boards[0].OwnerName != "alice" || boards[0].CanWrite {
		t.Fatalf("bob's boards = %+v", boards)
	}

	if rec := do(t, e.boards, http.MethodPut, boardPath, bob.Token, `{"name":"Mine"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("shared user rename: want 403, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodPost, boardPath+"/cards", bob.Token, `{"name":"Mine"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("shared user create card: want 403, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodDelete, cardPath, bob.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("shared user delete card: want 403, got %d", rec.Code)
	}

	rec = do(t, e.boards, http.MethodPost, cardPath+"/notes", bob.Token, `{"text":"from bob"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("shared user create note: %d %s", rec.Code, rec.Body.String())
	}
	note := decode[models.Note](t, rec)

	rec = do(t, e.boards, http.MethodPut, "/notes/"+note.ID.String(), alice.Token, `{"text":"edited by alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner edits note: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, e.boards, http.MethodGet, cardPath+"/notes", bob.Token, "")
	notes := decode[[]models.NoteView](t, rec)
	if len(notes) != 1 || notes[0].AuthorName != "bob" || notes[0].EditorName != "alice" || !notes[0].CanWrite {
		t.Fatalf("notes = %+v", notes)
	}

	rec = do(t, e.boards, http.MethodGet, boardPath+"/shares", bob.Token, "")
	shares := decode[[]models.ShareView](t, rec)
	if len(shares) != 1 || shares[0].User.ID != bob.User.ID {
		t.Fatalf("shares = %+v", shares)
	}

	if rec := do(t, e.boards, http.MethodDelete, boardPath+"/shares/"+bob.User.ID.String(), bob.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("bob leaves: want 204, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodGet, cardPath+"/notes", bob.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("after leaving: want 403, got %d", rec.Code)
	}

	if rec := do(t, e.boards, http.MethodDelete, boardPath, alice.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete board: want 204, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodGet, cardPath, alice.Token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("card after board delete: want 404, got %d", rec.Code)
	}
}

func TestCardAndNoteUpdates(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signUp(t, "alice")

	board := decode[models.Board](t, do(t, e.boards, http.MethodPost, "/boards", alice.Token, `{"name":"Plans"}`))
	card := decode[models.Card](t, do(t, e.boards, http.MethodPost, "/boards/"+board.ID.String()+"/cards", alice.Token, `{"name":"Ideas"}`))

	rec := do(t, e.boards, http.MethodPut, "/cards/"+card.ID.String(), alice.Token, `{"color":"#123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update card: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Card](t, rec); got.Name != "Ideas" || got.Color != "#123" {
		t.Fatalf("updated card = %+v", got)
	}

	rec = do(t, e.boards, http.MethodGet, "/boards/"+board.ID.String()+"/cards", alice.Token, "")
	cards := decode[[]models.CardSummary](t, rec)
	if len(cards) != 1 || !cards[0].CanWrite {
		t.Fatalf("cards = %+v", cards)
	}

	note := decode[models.Note](t, do(t, e.boards, http.MethodPost, "/cards/"+card.ID.String()+"/notes", alice.Token, `{"text":"hello"}`))
	if rec := do(t, e.boards, http.MethodPut, "/notes/"+note.ID.String(), alice.Token, `{"text":"   "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank note: want 400, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodDelete, "/notes/"+note.ID.String(), alice.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete note: want 204, got %d", rec.Code)
	}
	if rec := do(t, e.boards, http.MethodDelete, "/cards/"+card.ID.String(), alice.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete card: want 204, got %d", rec.Code)
	}
}

func TestProfileEndpoints(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signUp(t, "alice")

	rec := do(t, e.boards, http.MethodPut, "/profile", alice.Token, `{"name":"Alice Liddell"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, e.boards, http.MethodGet, "/profile", alice.Token, "")
	if got := decode[models.Profile](t, rec); got.Name != "Alice Liddell" || got.Username != "alice" {
		t.Fatalf("profile = %+v", got)
	}
	if rec := do(t, e.boards, http.MethodPut, "/profile", alice.Token, `{"name":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name: want 400, got %d", rec.Code)
	}
}
