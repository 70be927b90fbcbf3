package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/chepyr/go-board-notes/internal/apperr"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes and GenerateFromPassword rejects it.
	maxPasswordBytes = 72

	maxNameLength     = 100
	maxUsernameLength = 50
	maxEmailLength    = 255
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func validatePassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("Password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Validation("Password must be at most %d bytes", maxPasswordBytes)
	}
	if password != confirm {
		return apperr.Validation("Passwords do not match")
	}
	return nil
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (in *SignUpInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || utf8.RuneCountInString(in.Name) > maxNameLength {
		return apperr.Validation("Name is required and must be <= %d characters", maxNameLength)
	}
	if in.Username == "" || utf8.RuneCountInString(in.Username) > maxUsernameLength || strings.ContainsAny(in.Username, " @") {
		return apperr.Validation("Username is required, without spaces or @, and must be <= %d characters", maxUsernameLength)
	}
	if len(in.Email) > maxEmailLength || !isValidEmail(in.Email) {
		return apperr.Validation("Invalid email")
	}
	return validatePassword(in.Password, in.ConfirmPassword)
}
