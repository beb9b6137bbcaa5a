package file

import (
	"context"
	"slices"
	"strings"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

type userRepository struct {
	store *store
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	taken := slices.ContainsFunc(r.store.doc.Users, func(u *models.User) bool {
		return strings.EqualFold(u.Email, user.Email)
	})
	if taken {
		return persistence.ErrUserAlreadyExists
	}

	id, err := newID()
	if err != nil {
		return err
	}

	now := r.store.now()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	copied := *user
	r.store.doc.Users = append(r.store.doc.Users, &copied)

	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range r.store.doc.Users {
		if user.ID == id {
			copied := *user

			return &copied, nil
		}
	}

	return nil, persistence.ErrUserNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.store.doc.Users {
		if strings.EqualFold(user.Email, email) {
			copied := *user

			return &copied, nil
		}
	}

	return nil, persistence.ErrUserNotFound
}

func (r *userRepository) exists(id string) bool {
	return slices.ContainsFunc(r.store.doc.Users, func(u *models.User) bool { return u.ID == id })
}
