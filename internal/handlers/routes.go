package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	r.Use(RequestLogger)
	return r
}

// withCORS allows every origin when none are configured.
func (h *Handler) withCORS(next http.Handler) http.Handler {
	origins := h.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location"},
	}).Handler(next)
}

// AuthRoutes serves identity endpoints.
func (h *Handler) AuthRoutes() http.Handler {
	r := newRouter()
	r.HandleFunc("/auth/register", h.Limit(h.Register)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Limit(h.Login)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/password-reset", h.Limit(h.PasswordReset)).Methods(http.MethodPost)
	r.HandleFunc("/auth/password-reset/confirm", h.Limit(h.PasswordResetConfirm)).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	r.HandleFunc("/profile/password", h.AuthMiddleware(h.ChangePassword)).Methods(http.MethodPut)
	return h.withCORS(r)
}

// BoardRoutes serves boards, cards, notes, profiles and the event feed.
func (h *Handler) BoardRoutes() http.Handler {
	r := newRouter()
	r.HandleFunc("/profile", h.AuthMiddleware(h.GetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.AuthMiddleware(h.UpdateProfile)).Methods(http.MethodPut)

	r.HandleFunc("/boards", h.AuthMiddleware(h.ListBoards)).Methods(http.MethodGet)
	r.HandleFunc("/boards", h.AuthMiddleware(h.CreateBoard)).Methods(http.MethodPost)
	r.HandleFunc("/boards/{boardID}", h.AuthMiddleware(h.GetBoard)).Methods(http.MethodGet)
	r.HandleFunc("/boards/{boardID}", h.AuthMiddleware(h.UpdateBoard)).Methods(http.MethodPut)
	r.HandleFunc("/boards/{boardID}", h.AuthMiddleware(h.DeleteBoard)).Methods(http.MethodDelete)
	r.HandleFunc("/boards/{boardID}/shares", h.AuthMiddleware(h.ListShares)).Methods(http.MethodGet)
	r.HandleFunc("/boards/{boardID}/shares", h.AuthMiddleware(h.ShareBoard)).Methods(http.MethodPost)
	r.HandleFunc("/boards/{boardID}/shares/{userID}", h.AuthMiddleware(h.UnshareBoard)).Methods(http.MethodDelete)
	r.HandleFunc("/boards/{boardID}/cards", h.AuthMiddleware(h.ListCards)).Methods(http.MethodGet)
	r.HandleFunc("/boards/{boardID}/cards", h.AuthMiddleware(h.CreateCard)).Methods(http.MethodPost)

	r.HandleFunc("/cards/{cardID}", h.AuthMiddleware(h.GetCard)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{cardID}", h.AuthMiddleware(h.UpdateCard)).Methods(http.MethodPut)
	r.HandleFunc("/cards/{cardID}", h.AuthMiddleware(h.DeleteCard)).Methods(http.MethodDelete)
	r.HandleFunc("/cards/{cardID}/notes", h.AuthMiddleware(h.ListNotes)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{cardID}/notes", h.AuthMiddleware(h.CreateNote)).Methods(http.MethodPost)

	r.HandleFunc("/notes/{noteID}", h.AuthMiddleware(h.UpdateNote)).Methods(http.MethodPut)
	r.HandleFunc("/notes/{noteID}", h.AuthMiddleware(h.DeleteNote)).Methods(http.MethodDelete)

	r.HandleFunc("/ws", h.Limit(h.AuthMiddleware(h.HandleWebSocket))).Methods(http.MethodGet)
	return h.withCORS(r)
}
