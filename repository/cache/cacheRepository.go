// repository/cache/repo.go
package cacherepo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window in which an identical booking submission counts as a duplicate.
const idempotencyTTL = 30 * time.Second

type Repo interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
	ReleaseIdempotency(ctx context.Context, key string) error
}

type repo struct {
	client *redis.Client
}

func New(client *redis.Client) Repo { return &repo{client: client} }

func (r *repo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, key, 1, idempotencyTTL).Result()
}

func (r *repo) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
