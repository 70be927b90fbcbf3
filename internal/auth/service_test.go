package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  map[string]string
	fails bool
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails {
		return errors.New("smtp unavailable")
	}
	if m.sent == nil {
		m.sent = make(map[string]string)
	}
	m.sent[email] = link
	return nil
}

func (m *recordingMailer) tokenFor(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.sent[email]
	require.True(t, ok, "no reset mail for %s", email)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type fixture struct {
	svc    *Service
	repo   *MockUserRepository
	mr     *miniredis.Miniredis
	mailer *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewMockUserRepository()
	mailer := &recordingMailer{}
	svc := NewService(repo, NewTokens(testSecret, time.Hour), client, mailer)
	svc.ResetTTL = 10 * time.Minute
	svc.ResetURL = "https://boards.example/reset"
	return &fixture{svc: svc, repo: repo, mr: mr, mailer: mailer}
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Name:            "Alice",
		Username:        "alice",
		Email:           "Alice@Example.com",
		Password:        "strongpass",
		ConfirmPassword: "strongpass",
	}
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Empty(t, session.User.PasswordHash)

	stored, err := f.repo.GetByID(ctx, session.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "strongpass", stored.PasswordHash)

	user, err := f.svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignUpInput)
	}{
		{"Missing name", func(in *SignUpInput) { in.Name = "  " }},
		{"Missing username", func(in *SignUpInput) { in.Username = "" }},
		{"Username with spaces", func(in *SignUpInput) { in.Username = "a b" }},
		{"Invalid email", func(in *SignUpInput) { in.Email = "invalid" }},
		{"Password too short", func(in *SignUpInput) { in.Password, in.ConfirmPassword = "abc", "abc" }},
		{"Passwords differ", func(in *SignUpInput) { in.ConfirmPassword = "otherpass" }},
		{"Password over 72 bytes", func(in *SignUpInput) {
			in.Password = strings.Repeat("p", 73)
			in.ConfirmPassword = in.Password
		}},
		{"Name too long", func(in *SignUpInput) { in.Name = strings.Repeat("n", 101) }},
		{"Email too long", func(in *SignUpInput) { in.Email = strings.Repeat("e", 250) + "@example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validSignUp()
			tt.mutate(&in)
			_, err := f.svc.SignUp(context.Background(), in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Empty(t, f.repo.users)
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	again := validSignUp()
	again.Email = "other@example.com"
	_, err = f.svc.SignUp(ctx, again)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSignUpRepositoryFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("connection reset")
	_, err := f.svc.SignUp(context.Background(), validSignUp())
	assert.ErrorIs(t, err, apperr.ErrBackend)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{"By email", "alice@example.com", "strongpass", nil},
		{"By email in another case", "ALICE@example.com", "strongpass", nil},
		{"By username", "alice", "strongpass", nil},
		{"Wrong password", "alice", "wrongpass", apperr.ErrUnauthenticated},
		{"Unknown user", "bob", "strongpass", apperr.ErrUnauthenticated},
		{"Empty identifier", "", "strongpass", apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.svc.SignIn(ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", session.User.Username)
		})
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(ctx, session.Token))

	_, err = f.svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.Verifier().Verify(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	other, err := f.svc.SignIn(ctx, "alice", "strongpass")
	require.NoError(t, err)
	_, err = f.svc.CurrentUser(ctx, other.Token)
	assert.NoError(t, err)
}

func TestCurrentUserDeleted(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.svc.tokens.Issue(uuid.New())
	require.NoError(t, err)
	_, err = f.svc.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	require.NoError(t, f.svc.SendPasswordReset(ctx, "alice@example.com"))
	token := f.mailer.tokenFor(t, "alice@example.com")
	require.NotEmpty(t, token)
	assert.Equal(t, 10*time.Minute, f.mr.TTL(resetKey(token)))

	require.NoError(t, f.svc.ResetPassword(ctx, token, "brandnew", "brandnew"))
	err = f.svc.ResetPassword(ctx, token, "another1", "another1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.SignIn(ctx, "alice", "strongpass")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.SignIn(ctx, "alice", "brandnew")
	assert.NoError(t, err)
}

func TestPasswordResetExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	require.NoError(t, f.svc.SendPasswordReset(ctx, "alice@example.com"))
	token := f.mailer.tokenFor(t, "alice@example.com")

	f.mr.FastForward(11 * time.Minute)
	err = f.svc.ResetPassword(ctx, token, "brandnew", "brandnew")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSendPasswordResetUnknownEmail(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SendPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.mr.Keys())
}

func TestSendPasswordResetMailerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	f.mailer.fails = true
	assert.ErrorIs(t, f.svc.SendPasswordReset(ctx, "alice@example.com"), apperr.ErrBackend)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, uuid.Nil, "brandnew", "brandnew"), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, session.User.ID, "brandnew", "mismatch"), apperr.ErrValidation)
	long := strings.Repeat("x", 80)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, session.User.ID, long, long), apperr.ErrValidation)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, uuid.New(), "brandnew", "brandnew"), apperr.ErrNotFound)

	require.NoError(t, f.svc.ChangePassword(ctx, session.User.ID, "brandnew", "brandnew"))
	_, err = f.svc.SignIn(ctx, "alice@example.com", "brandnew")
	assert.NoError(t, err)
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected bool
	}{
		{"Valid simple email", "user@example.com", true},
		{"Valid with subdomain", "user@sub.example.com", true},
		{"Valid with +", "user+tag@example.com", true},
		{"Invalid no @", "userexample.com", false},
		{"Invalid no domain", "user@", false},
		{"Invalid no TLD", "user@example", false},
		{"Empty string", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidEmail(tt.email); got != tt.expected {
				t.Errorf("For email %q, expected %v, got %v", tt.email, tt.expected, got)
			}
		})
	}
}
