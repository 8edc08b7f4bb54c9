package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"employee-directory/backend/internal/refreshtoken/domain"
)

// consumeScript deletes the hash at KEYS[1] only when its token_hash field equals ARGV[1].
const consumeScript = `
if redis.call("HGET", KEYS[1], "token_hash") == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var consumeLua = redis.NewScript(consumeScript)

// RedisRepository stores each user's refresh token as a hash under <prefix>:<userID>
// that expires with the token.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRepository returns a Redis-backed refresh token repository. An empty prefix defaults to "refresh".
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "refresh"
	}
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) key(userID string) string {
	return r.prefix + ":" + userID
}

func (r *RedisRepository) GetByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	vals, err := r.redis.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	t := &domain.RefreshToken{
		ID:        vals["id"],
		UserID:    userID,
		TokenHash: vals["token_hash"],
	}
	if v, err := strconv.ParseInt(vals["expire_date"], 10, 64); err == nil {
		t.ExpireDate = time.Unix(v, 0).UTC()
	}
	if v, err := strconv.ParseInt(vals["created_at"], 10, 64); err == nil {
		t.CreatedAt = time.Unix(v, 0).UTC()
	}
	return t, nil
}

// Replace overwrites the user's token in a single MULTI/EXEC.
func (r *RedisRepository) Replace(ctx context.Context, t *domain.RefreshToken) error {
	key := r.key(t.UserID)
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"id", t.ID,
			"token_hash", t.TokenHash,
			"expire_date", t.ExpireDate.Unix(),
			"created_at", t.CreatedAt.Unix(),
		)
		if !t.ExpireDate.IsZero() {
			pipe.ExpireAt(ctx, key, t.ExpireDate)
		}
		return nil
	})
	return err
}

func (r *RedisRepository) Consume(ctx context.Context, userID, tokenHash string) (bool, error) {
	n, err := consumeLua.Run(ctx, r.redis, []string{r.key(userID)}, tokenHash).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRepository) DeleteByUserID(ctx context.Context, userID string) (bool, error) {
	n, err := r.redis.Del(ctx, r.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
