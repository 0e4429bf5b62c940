package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease key only when it still holds this
// instance's owner token, so an expired lease re-acquired by another
// instance is never released from under it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a minimal distributed work claim on top of SET NX PX. Each
// Lease instance carries its own owner token; keys are namespaced by
// prefix so several deployments can share one Redis.
type Lease struct {
	client redis.UniversalClient
	prefix string
	owner  string
}

// NewLease creates a lease claimer with a unique owner token.
func NewLease(client redis.UniversalClient, prefix string) *Lease {
	return &Lease{
		client: client,
		prefix: prefix,
		owner:  uuid.New().String(),
	}
}

// Acquire attempts to claim the key for ttl. It returns false when the
// key is already held by another owner.
func (l *Lease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+":"+key, l.owner, ttl).Result()
}

// Release returns the claim. A lease held by another owner is left alone.
func (l *Lease) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, l.owner).Err()
}
