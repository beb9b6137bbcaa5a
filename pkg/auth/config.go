// Package auth hashes passwords and issues and verifies the access and refresh tokens
// that identify API callers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAlgorithm  = "HS256"
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 300 * time.Minute
	DefaultIssuer     = "workflows-api"
)

// Config holds the token and password settings, built once at start-up.
type Config struct {
	Algorithm     string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	Issuer        string
}

// DefaultConfig returns a configuration with the default algorithm and lifetimes and no secrets.
func DefaultConfig() Config {
	return Config{
		Algorithm:  DefaultAlgorithm,
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
		BcryptCost: bcrypt.DefaultCost,
		Issuer:     DefaultIssuer,
	}
}

func (c Config) signingMethod() (*jwt.SigningMethodHMAC, error) {
	switch c.Algorithm {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", c.Algorithm)
	}
}

func (c Config) validate() error {
	if len(c.AccessSecret) == 0 {
		return errors.New("access token secret is required")
	}

	if len(c.RefreshSecret) == 0 {
		return errors.New("refresh token secret is required")
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}

	if c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return nil
}
