package handlers

import (
	"context"
	"net/http"

	"github.com/chepyr/go-board-notes/internal/service"
)

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cards, err := h.Boards.ListCards(ctx, UserID(r.Context()), boardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, cards)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "boardID", "board")
	if !ok {
		return
	}
	var input service.CardInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	card, err := h.Boards.CreateCard(ctx, UserID(r.Context()), boardID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/cards/"+card.ID.String())
	sendJSON(w, http.StatusCreated, card)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "card")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	card, err := h.Boards.GetCard(ctx, UserID(r.Context()), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "card")
	if !ok {
		return
	}
	var input service.CardInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	card, err := h.Boards.UpdateCard(ctx, UserID(r.Context()), cardID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "card")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Boards.DeleteCard(ctx, UserID(r.Context()), cardID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
