package handlers

import (
	"context"
	"net/http"

	"github.com/chepyr/go-board-notes/internal/service"
)

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "card")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	notes, err := h.Boards.ListNotes(ctx, UserID(r.Context()), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "card")
	if !ok {
		return
	}
	var input service.NoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	note, err := h.Boards.CreateNote(ctx, UserID(r.Context()), cardID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/notes/"+note.ID.String())
	sendJSON(w, http.StatusCreated, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r, "noteID", "note")
	if !ok {
		return
	}
	var input service.NoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	note, err := h.Boards.UpdateNote(ctx, UserID(r.Context()), noteID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r, "noteID", "note")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Boards.DeleteNote(ctx, UserID(r.Context()), noteID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
