package instructor

import (
	"context"

	"driveconnect/internal/domain"
	"driveconnect/internal/repository"
)

type InstructorStore interface {
	ListVerified(ctx context.Context) ([]repository.InstructorListing, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error)
	UpdateProfile(ctx context.Context, i *domain.Instructor) error
}
