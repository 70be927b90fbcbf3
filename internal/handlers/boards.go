package handlers

import (
	"context"
	"net/http"

	"github.com/chepyr/go-board-notes/internal/service"
)

/*
handles routes:
GET /boards - list own and shared boards
POST /boards - create board
*/
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	boards, err := h.Boards.ListBoards(ctx, UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, boards)
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var input service.BoardInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	board, err := h.Boards.CreateBoard(ctx, UserID(r.Context()), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/boards/"+board.ID.String())
	sendJSON(w, http.StatusCreated, board)
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	board, err := h.Boards.GetBoard(ctx, UserID(r.Context()), boardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, board)
}

func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	var input service.BoardInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	board, err := h.Boards.UpdateBoard(ctx, UserID(r.Context()), boardID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, board)
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Boards.DeleteBoard(ctx, UserID(r.Context()), boardID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	shares, err := h.Boards.ListShares(ctx, UserID(r.Context()), boardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, shares)
}

// ShareBoard takes {"user": "<email or username>"}.
func (h *Handler) ShareBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	var input struct {
		User string `json:"user"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	share, err := h.Boards.ShareBoard(ctx, UserID(r.Context()), boardID, input.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/boards/"+boardID.String()+"/shares/"+share.User.ID.String())
	sendJSON(w, http.StatusCreated, share)
}

func (h *Handler) UnshareBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Boards.UnshareBoard(ctx, UserID(r.Context()), boardID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
