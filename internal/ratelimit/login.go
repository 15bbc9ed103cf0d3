package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rutujak-bora/crm/internal/config"
)

// Refills ARGV[1] tokens per second up to ARGV[2] and takes one. Replies
// {allowed, milliseconds until the next token}.
var attemptScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
if now > ts then
  tokens = math.min(burst, tokens + (now - ts) / 1000 * rate)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / rate * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, wait}
`)

// LoginLimiter throttles login attempts per namespace and email with a
// token bucket kept in redis. A nil limiter allows everything.
type LoginLimiter struct {
	client *redis.Client
	rate   float64
	burst  int
	ttl    time.Duration
}

func NewLoginLimiter(cfg config.Config, client *redis.Client) *LoginLimiter {
	if client == nil || cfg.Auth.LoginRate <= 0 || cfg.Auth.LoginBurst <= 0 {
		return nil
	}
	return &LoginLimiter{
		client: client,
		rate:   cfg.Auth.LoginRate,
		burst:  cfg.Auth.LoginBurst,
		ttl:    bucketTTL(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.client != nil
}

// Allow reports whether another attempt is allowed and, if not, how long to wait.
func (l *LoginLimiter) Allow(ctx context.Context, namespace, email string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return true, 0, nil
	}
	reply, err := attemptScript.Run(ctx, l.client, []string{attemptKey(namespace, email)},
		l.rate, l.burst, l.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(reply) != 2 {
		return false, 0, fmt.Errorf("unexpected limiter reply %v", reply)
	}
	return reply[0] == 1, time.Duration(reply[1]) * time.Millisecond, nil
}

func attemptKey(namespace, email string) string {
	return "crm:login:" + namespace + ":" + strings.ToLower(strings.TrimSpace(email))
}

// bucketTTL keeps an idle bucket around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Max(1, math.Ceil(float64(burst)/rate*2))
	return time.Duration(seconds) * time.Second
}
