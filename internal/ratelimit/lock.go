package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrLockUnavailable = errors.New("lock_unavailable")
	ErrLockHeld        = errors.New("lock_held")
)

// compare-and-delete so a lease never removes a lock taken over by another
// holder after its ttl ran out.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive leases. A nil Locker is valid and
// refuses every Acquire with ErrLockUnavailable.
type Locker struct {
	client *redis.Client
	prefix string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, prefix: "crm:lock:"}
}

// Lease is one held lock.
type Lease struct {
	client *redis.Client
	key    string
	owner  string
}

// Acquire takes the named lock for ttl, or returns ErrLockHeld when someone
// else has it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	if l == nil || l.client == nil {
		return nil, ErrLockUnavailable
	}
	if name == "" || ttl <= 0 {
		return nil, errors.New("lock name and ttl are required")
	}

	lease := &Lease{client: l.client, key: l.prefix + name, owner: uuid.NewString()}
	ok, err := l.client.SetNX(ctx, lease.key, lease.owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lease, nil
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err()
}
