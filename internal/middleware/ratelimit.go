package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
)

// Actions of the task API, each with its own bucket per caller.
const (
    ActionRead     = "read"
    ActionComplete = "complete"
    ActionStart    = "start"
)

// Bucket describes one token bucket.
type Bucket struct {
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
}

// Decision is the outcome of taking one token.
type Decision struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

// Limiter takes one token from the bucket stored under key.
type Limiter interface {
    Take(ctx context.Context, key string, b Bucket) (Decision, error)
}

// takeScript refills the bucket in whole intervals and takes a token.  It
// runs atomically inside Redis so every worker sees the same bucket.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local refill   = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now      = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp  = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if tokens == nil or stamp == nil then
    tokens = capacity
    stamp = now
end

local steps = math.floor((now - stamp) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    stamp = stamp + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
else
    wait = interval - (now - stamp)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// RedisLimiter keeps buckets in Redis hashes.
type RedisLimiter struct {
    rdb *redis.Client
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
    return &RedisLimiter{rdb: rdb}
}

func (l *RedisLimiter) Take(ctx context.Context, key string, b Bucket) (Decision, error) {
    res, err := takeScript.Run(ctx, l.rdb, []string{key},
        b.Capacity,
        b.RefillTokens,
        b.RefillInterval.Milliseconds(),
        time.Now().UnixMilli(),
        int64(b.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return Decision{}, err
    }
    if len(res) != 3 {
        return Decision{}, fmt.Errorf("ratelimit: unexpected script result %v", res)
    }
    return Decision{
        Allowed:    res[0] == 1,
        Remaining:  res[1],
        RetryAfter: time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits the task API with buckets kept in Redis.  Without
// Redis, or when disabled, every request passes.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return RateLimit(cfg, NewRedisLimiter(rdb))
}

// RateLimit takes a token for the caller and action of every request.  It
// must run after JWTAuth so buckets are keyed by caller; anonymous requests
// share a bucket per client IP.  Limiter errors let the request through.
func RateLimit(cfg config.RateLimitConfig, lim Limiter) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            action := actionOf(c)
            b := bucketFor(cfg, action)
            key := bucketKey(cfg.Prefix, action, c)

            d, err := lim.Take(c.Request().Context(), key, b)
            if err != nil {
                c.Logger().Warnf("ratelimit: key=%s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(b.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(d.Remaining, 0), 10))
            if d.Allowed {
                return next(c)
            }

            secs := int(math.Ceil(min(max(d.RetryAfter, 0), b.RefillInterval).Seconds()))
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "rate limit exceeded",
                "action":      action,
                "retry_after": secs,
            })
        }
    }
}

// actionOf classifies a request by its registered route.
func actionOf(c echo.Context) string {
    path := c.Path()
    switch {
    case c.Request().Method != http.MethodPost:
        return ActionRead
    case strings.HasSuffix(path, "/complete"):
        return ActionComplete
    case strings.HasSuffix(path, "/processes"):
        return ActionStart
    default:
        return ActionRead
    }
}

func bucketFor(cfg config.RateLimitConfig, action string) Bucket {
    capacity := cfg.ReadCapacity
    switch action {
    case ActionComplete:
        capacity = cfg.CompleteCapacity
    case ActionStart:
        capacity = cfg.StartCapacity
    }
    return Bucket{
        Capacity:       capacity,
        RefillTokens:   cfg.RefillTokens,
        RefillInterval: cfg.RefillInterval,
        TTL:            cfg.TTL,
    }
}

func bucketKey(prefix, action string, c echo.Context) string {
    caller := userID(c)
    if caller == "anon" {
        ip := c.RealIP()
        if ip == "" {
            ip = "unknown"
        }
        caller = "ip:" + ip
    }
    return prefix + ":" + action + ":" + caller
}
