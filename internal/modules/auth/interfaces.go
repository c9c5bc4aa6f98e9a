package auth

import (
	"context"

	"driveconnect/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type InstructorStore interface {
	Create(ctx context.Context, i *domain.Instructor) error
}
