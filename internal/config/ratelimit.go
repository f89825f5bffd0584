package config

import "time"

// RateLimitConfig controls the token buckets guarding the /v1 task API.
// Every caller gets one bucket per action.  Reads are cheap; completing a
// task resumes a workflow and starting a process costs spreadsheet quota,
// so those buckets are smaller.
type RateLimitConfig struct {
    Enabled          bool
    ReadCapacity     int // GET /v1/tasks and /v1/tasks/:id
    CompleteCapacity int // POST /v1/tasks/:id/complete
    StartCapacity    int // POST /v1/processes
    RefillTokens     int
    RefillInterval   time.Duration
    TTL              time.Duration
    Prefix           string
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:          envBool("RATE_LIMIT_ENABLED", true),
        ReadCapacity:     envInt("RATE_LIMIT_READ_CAPACITY", 30),
        CompleteCapacity: envInt("RATE_LIMIT_COMPLETE_CAPACITY", 10),
        StartCapacity:    envInt("RATE_LIMIT_START_CAPACITY", 5),
        RefillTokens:     envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval:   envDur("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
        TTL:              envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:           envStr("RATE_LIMIT_PREFIX", "bsr:rl"),
    }
    return def.normalize()
}

// normalize clamps values that would make a bucket unusable.
func (c RateLimitConfig) normalize() RateLimitConfig {
    for _, capacity := range []*int{&c.ReadCapacity, &c.CompleteCapacity, &c.StartCapacity} {
        if *capacity < 1 {
            *capacity = 1
        }
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    return c
}
