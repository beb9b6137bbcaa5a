package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/workflows-api/pkg/auth"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

const bearerPrefix = "Bearer "

// Auth registers users and exchanges credentials for tokens.
type Auth struct {
	persistence persistence.Persistence
	provider    *auth.Provider
	logger      *slog.Logger
}

// NewAuth creates a new auth service.
func NewAuth(p persistence.Persistence, provider *auth.Provider, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}

	return &Auth{persistence: p, provider: provider, logger: logger}
}

// NormalizeEmail trims and lower-cases an address; emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account.
func (a *Auth) Register(ctx context.Context, email, password string) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "auth.register", nil)
	defer func() { endSpan(span, err) }()

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, NewValidationError("Register", "CREDENTIALS_REQUIRED", "email and password are required", ErrInvalidRequest)
	}

	hash, err := a.provider.HashPassword(password)
	if err != nil {
		return nil, NewValidationError("Register", "INVALID_PASSWORD", err.Error(), ErrInvalidRequest)
	}

	user = &models.User{Email: email, PasswordHash: hash}

	err = a.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		return store.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return user, nil
}

// Login verifies the credentials and issues a token pair.
func (a *Auth) Login(ctx context.Context, email, password string) (tokens auth.TokenPair, err error) {
	ctx, span := startSpan(ctx, "auth.login", nil)
	defer func() { endSpan(span, err) }()

	var user *models.User

	err = a.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		user, err = store.Users().GetByEmail(ctx, NormalizeEmail(email))

		return err
	})
	if errors.Is(err, persistence.ErrUserNotFound) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	if err != nil {
		return auth.TokenPair{}, err
	}

	if !a.provider.VerifyPassword(user.PasswordHash, password) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	return a.provider.IssueTokens(user.ID)
}

// Refresh exchanges a valid refresh token for a new pair.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (tokens auth.TokenPair, err error) {
	ctx, span := startSpan(ctx, "auth.refresh", nil)
	defer func() { endSpan(span, err) }()

	claims, err := a.provider.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	user, err := a.userByID(ctx, claims.Subject)
	if err != nil {
		return auth.TokenPair{}, err
	}

	return a.provider.IssueTokens(user.ID)
}

// CurrentUser resolves the user behind an Authorization header value. A missing or
// non-Bearer credential requires authentication; a rejected token fails it.
func (a *Auth) CurrentUser(ctx context.Context, credential string) (user *models.User, err error) {
	token, found := strings.CutPrefix(credential, bearerPrefix)
	if !found || strings.TrimSpace(token) == "" {
		return nil, ErrAuthenticationRequired
	}

	claims, err := a.provider.ParseAccess(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	return a.userByID(ctx, claims.Subject)
}

func (a *Auth) userByID(ctx context.Context, id string) (user *models.User, err error) {
	ctx, span := otelhelper.StartSpan(ctx, tracer, "auth.user", attribute.String(otelhelper.UserIDKey, id))
	defer func() { endSpan(span, err) }()

	err = a.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		user, err = store.Users().GetByID(ctx, id)

		return err
	})
	if errors.Is(err, persistence.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrAuthenticationFailed)
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}
