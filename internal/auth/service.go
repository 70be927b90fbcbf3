// Package auth owns user identity: registration, sign-in, access tokens and
// password resets.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/chepyr/go-board-notes/internal/db"
	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users    db.UserRepositoryInterface
	tokens   *Tokens
	verifier *Verifier
	redis    *redis.Client
	mailer   Mailer

	ResetTTL time.Duration
	ResetURL string
}

func NewService(users db.UserRepositoryInterface, tokens *Tokens, client *redis.Client, mailer Mailer) *Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		verifier: NewVerifier(tokens, client),
		redis:    client,
		mailer:   mailer,
		ResetTTL: time.Hour,
		ResetURL: "http://localhost:3000/reset-password",
	}
}

// Verifier returns the token verifier backed by the same revocation list.
func (s *Service) Verifier() *Verifier {
	return s.verifier
}

// Session is returned on successful sign-up and sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Backend("cannot hash password", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict("Email or username is already taken")
		}
		return nil, apperr.Backend("cannot save user", err)
	}
	log.WithField("user_id", user.ID).Info("user registered")
	return s.newSession(user)
}

// SignIn accepts an email or a username as identifier.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.Validation("Email or username and password are required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	user, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Unauthenticated("Invalid email or password")
		}
		return nil, apperr.Backend("cannot load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.WithField("user_id", user.ID).Debug("invalid password")
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	log.WithField("user_id", user.ID).Info("user logged in")
	return s.newSession(user)
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if err := s.verifier.revoke(ctx, claims); err != nil {
		return apperr.Backend("cannot revoke token", err)
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Unauthenticated("user no longer exists")
		}
		return nil, apperr.Backend("cannot load user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SendPasswordReset mails a single-use reset link. Unknown addresses succeed
// without sending anything.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return apperr.Validation("Invalid email")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Debug("password reset for unknown email")
			return nil
		}
		return apperr.Backend("cannot load user", err)
	}
	if s.redis == nil {
		return apperr.Backend("cannot store reset token", errors.New("redis is not configured"))
	}

	token := rand.Text()
	if err := s.redis.Set(ctx, resetKey(token), user.ID.String(), s.ResetTTL).Err(); err != nil {
		return apperr.Backend("cannot store reset token", err)
	}
	link := s.ResetURL + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return apperr.Backend("cannot send reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := validatePassword(password, confirm); err != nil {
		return err
	}
	if token == "" || s.redis == nil {
		return apperr.Validation("Invalid or expired reset token")
	}
	raw, err := s.redis.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return apperr.Validation("Invalid or expired reset token")
	}
	if err != nil {
		return apperr.Backend("cannot read reset token", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return apperr.Validation("Invalid or expired reset token")
	}
	return s.setPassword(ctx, userID, password)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, password, confirm string) error {
	if userID == uuid.Nil {
		return apperr.ErrUnauthenticated
	}
	if err := validatePassword(password, confirm); err != nil {
		return err
	}
	return s.setPassword(ctx, userID, password)
}

func (s *Service) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Backend("cannot hash password", err)
	}
	user := &models.User{ID: userID, PasswordHash: string(hash), UpdatedAt: time.Now().UTC()}
	if err := s.users.UpdatePassword(ctx, user); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Backend("cannot update password", err)
	}
	log.WithField("user_id", userID).Info("password changed")
	return nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Backend("cannot create token", err)
	}
	user.PasswordHash = ""
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func resetKey(token string) string {
	return "reset:" + token
}
