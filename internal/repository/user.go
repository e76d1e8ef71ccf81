package repository

import (
	"context"
	"time"

	"market-board/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Lookups by username expect the already lower-cased form.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error
	SetLastMessageRead(ctx context.Context, id int64, readAt time.Time) error
	SetRole(ctx context.Context, username string, role domain.Role) error
	// Delete removes the account; posts, comments and messages in either
	// direction go with it via foreign key cascade.
	Delete(ctx context.Context, id int64) error
}
