package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type contextKey int

const userIDKey contextKey = iota

// UserID returns the authenticated user, or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket handshakes, so upgrades may pass the token as ?token= instead.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

/*
Verify the bearer token and put the user id into the request context.
*/
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		userID, err := h.Verifier.Verify(r.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthenticated {
				sendError(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}
