package issuer

import (
	"errors"
	"fmt"
	"time"
)

var (
	errMissingSigningKey  = errors.New("issuer.config.missing_signing_key")
	errMissingTokenIssuer = errors.New("issuer.config.missing_token_issuer")
	errInvalidAccessTTL   = errors.New("issuer.config.invalid_access_ttl")
	errInvalidRefreshTTL  = errors.New("issuer.config.invalid_refresh_ttl")
)

// ServerConfig configures token minting for the mock session issuer.
type ServerConfig struct {
	SigningKey  []byte
	TokenIssuer string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// Validate checks that every minting parameter is usable.
func (config ServerConfig) Validate() error {
	if len(config.SigningKey) == 0 {
		return fmt.Errorf("issuer.config: %w", errMissingSigningKey)
	}
	if config.TokenIssuer == "" {
		return fmt.Errorf("issuer.config: %w", errMissingTokenIssuer)
	}
	if config.AccessTTL <= 0 {
		return fmt.Errorf("issuer.config: %w", errInvalidAccessTTL)
	}
	if config.RefreshTTL <= 0 {
		return fmt.Errorf("issuer.config: %w", errInvalidRefreshTTL)
	}
	return nil
}
