package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis guarda as sessões com expiração nativa por chave. Uma chave que
// sumiu não distingue vencida de nunca vista, então Check devolve
// ErrUnknown nos dois casos.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(c *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: c, TTL: ttl}
}

func key(sessionID string) string { return "session:live:" + sessionID }

func (r *Redis) Touch(ctx context.Context, sessionID string) error {
	return r.Client.Set(ctx, key(sessionID), "1", r.TTL).Err()
}

func (r *Redis) Check(ctx context.Context, sessionID string) error {
	n, err := r.Client.Exists(ctx, key(sessionID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknown
	}
	// atividade renova o prazo
	return r.Client.Expire(ctx, key(sessionID), r.TTL).Err()
}
