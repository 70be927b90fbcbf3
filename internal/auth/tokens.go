package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chepyr/go-board-notes/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Tokens issues and parses HS256 access tokens carrying sub, exp, iat and jti.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims is the parsed form of a valid token.
type Claims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

func (t *Tokens) Issue(userID uuid.UUID) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        claims.TokenID,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates the signature and the required claims.
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &rc, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token")
	}
	if rc.IssuedAt == nil || rc.ID == "" {
		return nil, apperr.Unauthenticated("invalid token claims")
	}
	userID, err := uuid.Parse(rc.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, apperr.Unauthenticated("invalid token claims")
	}
	return &Claims{UserID: userID, TokenID: rc.ID, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// Verifier authenticates bearer tokens for both services. With a Redis client
// it also rejects tokens revoked by SignOut.
type Verifier struct {
	tokens *Tokens
	redis  *redis.Client
}

func NewVerifier(tokens *Tokens, client *redis.Client) *Verifier {
	return &Verifier{tokens: tokens, redis: client}
}

// Verify returns the id of the user the token was issued to.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (uuid.UUID, error) {
	claims, err := v.tokens.Parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	revoked, err := v.isRevoked(ctx, claims.TokenID)
	if err != nil {
		return uuid.Nil, err
	}
	if revoked {
		return uuid.Nil, apperr.Unauthenticated("token has been revoked")
	}
	return claims.UserID, nil
}

func (v *Verifier) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if v.redis == nil {
		return false, nil
	}
	n, err := v.redis.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		log.WithError(err).Error("failed to check token revocation")
		return false, apperr.Backend("failed to verify token", err)
	}
	return n > 0, nil
}

func (v *Verifier) revoke(ctx context.Context, claims *Claims) error {
	if v.redis == nil {
		return errors.New("token revocation requires redis")
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return v.redis.Set(ctx, revokedKey(claims.TokenID), "1", ttl).Err()
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}
