package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chepyr/go-board-notes/shared/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache wraps a Store with Redis-backed caching for board listings and user
// profiles. Boards and shares read for access decisions always go to the base
// store.
type Cache struct {
	Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Store wrapper. A nil client disables caching.
func NewCache(base Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("store.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

// cachedUser mirrors models.User without the password hash.
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cache) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var cu cachedUser
	if c.load(ctx, userCacheKey(id), &cu) {
		return &models.User{
			ID: cu.ID, Name: cu.Name, Username: cu.Username, Email: cu.Email,
			CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt,
		}, nil
	}
	user, err := c.Store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, userCacheKey(id), cachedUser{
		ID: user.ID, Name: user.Name, Username: user.Username, Email: user.Email,
		CreatedAt: user.CreatedAt, UpdatedAt: user.UpdatedAt,
	})
	return user, nil
}

func (c *Cache) ListBoards(ctx context.Context, ownerID uuid.UUID) ([]*models.BoardWithCount, error) {
	var boards []*models.BoardWithCount
	if c.load(ctx, ownedBoardsCacheKey(ownerID), &boards) {
		return boards, nil
	}
	boards, err := c.Store.ListBoards(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, ownedBoardsCacheKey(ownerID), boards)
	return boards, nil
}

func (c *Cache) ListSharedBoards(ctx context.Context, userID uuid.UUID) ([]*models.BoardWithCount, error) {
	var boards []*models.BoardWithCount
	if c.load(ctx, sharedBoardsCacheKey(userID), &boards) {
		return boards, nil
	}
	boards, err := c.Store.ListSharedBoards(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, sharedBoardsCacheKey(userID), boards)
	return boards, nil
}

// Invalidate evicts every cached view of the given users.
func (c *Cache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	c.Store.Invalidate(ctx, userIDs...)
	if c.redis == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs)*3)
	for _, id := range userIDs {
		keys = append(keys, userCacheKey(id), ownedBoardsCacheKey(id), sharedBoardsCacheKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).WithField("users", len(userIDs)).Error("failed to evict cache entries")
	}
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			log.WithError(err).WithField("key", key).Warn("cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func userCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func ownedBoardsCacheKey(id uuid.UUID) string {
	return "boards:owned:" + id.String()
}

func sharedBoardsCacheKey(id uuid.UUID) string {
	return "boards:shared:" + id.String()
}
