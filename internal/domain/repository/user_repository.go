package repository

import (
	"context"

	"github.com/pulseboard/pulseboard/internal/domain/entity"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpsertOAuth creates or refreshes an account established through an
	// external OAuth provider, matching on email.
	UpsertOAuth(ctx context.Context, u *entity.User) error
}
