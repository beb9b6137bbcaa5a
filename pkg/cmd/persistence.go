package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/dukex/workflows-api/pkg/persistence/file"
	"github.com/dukex/workflows-api/pkg/persistence/postgresql"
)

// NewPersistence picks the backend from the database URL scheme. Anything that is not
// postgres:// or postgresql:// is treated as a file store root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "file"
	}
}
