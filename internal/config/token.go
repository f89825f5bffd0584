package config

// TokenConfig holds what the tasktoken command needs to mint API tokens.
type TokenConfig struct {
    Secret string // JWT_SECRET, shared with the worker
    TTLMin int    // ACCESS_TOKEN_TTL_MIN
}

// LoadTokenConfig reads the token settings.  JWT_SECRET is required.
func LoadTokenConfig() TokenConfig {
    ttl := envInt("ACCESS_TOKEN_TTL_MIN", 60)
    if ttl <= 0 {
        ttl = 60
    }
    return TokenConfig{Secret: must("JWT_SECRET"), TTLMin: ttl}
}
