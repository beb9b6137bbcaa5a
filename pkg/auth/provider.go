package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken indicates a token that is malformed, badly signed or of the wrong kind.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the claims carried by every issued token. The subject is the user id.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Provider hashes passwords and signs and verifies tokens.
type Provider struct {
	config Config
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewProvider validates the configuration and creates a provider.
func NewProvider(config Config) (*Provider, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}

	method, err := config.signingMethod()
	if err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}

	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}

	return &Provider{
		config: config,
		method: method,
		now:    time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of a plain password.
func (p *Provider) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func (p *Provider) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueTokens signs a fresh access and refresh token for the user.
func (p *Provider) IssueTokens(userID string) (TokenPair, error) {
	access, err := p.sign(userID, TokenTypeAccess, p.config.AccessSecret, p.config.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := p.sign(userID, TokenTypeRefresh, p.config.RefreshSecret, p.config.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (p *Provider) ParseAccess(token string) (*Claims, error) {
	return p.parse(token, TokenTypeAccess, p.config.AccessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (p *Provider) ParseRefresh(token string) (*Claims, error) {
	return p.parse(token, TokenTypeRefresh, p.config.RefreshSecret)
}

func (p *Provider) sign(userID string, tokenType TokenType, secret []byte, ttl time.Duration) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := p.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   userID,
			Issuer:    p.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(p.method, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return signed, nil
}

func (p *Provider) parse(token string, tokenType TokenType, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(p.config.Issuer))
	}

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, options...)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !parsed.Valid || claims.TokenType != tokenType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	}

	return fmt.Errorf("%w: %w", ErrInvalidToken, err)
}
