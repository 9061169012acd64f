// Package ratelimit provides a redis-backed token bucket for the public
// invoice endpoints. When redis is not configured the limiter allows
// everything, so single-node deployments work without extra infrastructure.
package ratelimit

import (
	"context"
	"time"

	"github.com/invorahq/invora/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// tokenBucketScript refills the bucket lazily on each request and takes one
// token when available. KEYS[1] is the bucket, ARGV are rate per second,
// burst capacity and the current unix time in milliseconds.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil then
  tokens = burst
  ts = now
end

local elapsed = math.max(0, now - ts) / 1000.0
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', key, math.ceil(burst / rate * 1000) * 2)
return allowed
`)

// Limiter is safe to use as a nil receiver; a nil limiter allows all.
type Limiter struct {
	client *redis.Client
	log    *zap.Logger
	rate   float64
	burst  int
	prefix string
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

func New(p Params) *Limiter {
	rl := p.Config.RateLimit
	if !rl.Enabled || rl.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
		DB:       rl.RedisDB,
	})
	return &Limiter{
		client: client,
		log:    p.Log.Named("ratelimit"),
		rate:   rl.PublicRate,
		burst:  rl.PublicBurst,
		prefix: "invora:rl:public:",
	}
}

// Allow reports whether one request for key may proceed. Redis failures
// fail open: throttling is protection, not correctness.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return true
	}

	now := time.Now().UnixMilli()
	allowed, err := tokenBucketScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.rate, l.burst, now,
	).Int()
	if err != nil {
		l.log.Warn("token bucket check failed", zap.Error(err))
		return true
	}
	return allowed == 1
}

func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}

var Module = fx.Module("ratelimit",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, l *Limiter) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return l.Close()
		},
	})
}
