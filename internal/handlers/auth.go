package handlers

import (
	"context"
	"net/http"

	"github.com/chepyr/go-board-notes/internal/auth"
)

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input auth.SignUpInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := h.Auth.SignUp(ctx, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/auth/me")
	sendJSON(w, http.StatusCreated, session)
}

// Login handles POST /auth/login. The login field takes an email or a
// username; email is accepted as an alias.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	identifier := input.Login
	if identifier == "" {
		identifier = input.Email
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := h.Auth.SignIn(ctx, identifier, input.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, session)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		sendError(w, "Missing Authorization header", http.StatusUnauthorized)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.SignOut(ctx, token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		sendError(w, "Missing Authorization header", http.StatusUnauthorized)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Auth.CurrentUser(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// PasswordReset handles POST /auth/password-reset. The answer is the same
// whether or not the address belongs to a user.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.SendPasswordReset(ctx, input.Email); err != nil {
		writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the address is registered, a reset link has been sent",
	})
}

// PasswordResetConfirm handles POST /auth/password-reset/confirm.
func (h *Handler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.ResetPassword(ctx, input.Token, input.Password, input.ConfirmPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /profile/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, UserID(r.Context()), input.Password, input.ConfirmPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
