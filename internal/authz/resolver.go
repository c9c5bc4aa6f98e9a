package authz

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"driveconnect/internal/domain"
)

// Actor is the caller's relationship to the resource being acted on.
type Actor int

const (
	ActorNone Actor = iota
	ActorStudent
	ActorInstructor
)

type InstructorDirectory interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error)
}

// Resolver maps a verified caller identity onto resource ownership. The
// user-to-instructor-profile lookup happens at most once per request; callers
// that later need the profile (penalty writes) reuse the resolved copy.
type Resolver struct {
	instructors InstructorDirectory
}

func NewResolver(instructors InstructorDirectory) *Resolver {
	return &Resolver{instructors: instructors}
}

// Ownership is the outcome of a resolution. Instructor is non-nil exactly
// when Actor == ActorInstructor.
type Ownership struct {
	Actor      Actor
	Instructor *domain.Instructor
}

func (o Ownership) IsStudent() bool    { return o.Actor == ActorStudent }
func (o Ownership) IsInstructor() bool { return o.Actor == ActorInstructor }
func (o Ownership) None() bool         { return o.Actor == ActorNone }

// ForBooking decides whether the caller is the booking's student, its
// instructor, or a stranger. A user holds at most one of the two roles.
func (r *Resolver) ForBooking(ctx context.Context, ident domain.Identity, b *domain.Booking) (Ownership, error) {
	if ident.Role == domain.RoleStudent {
		if b.StudentID == ident.UID {
			return Ownership{Actor: ActorStudent}, nil
		}
		return Ownership{}, nil
	}

	if ident.Role == domain.RoleInstructor {
		profile, err := r.profile(ctx, ident.UID)
		if err != nil {
			return Ownership{}, err
		}
		if profile != nil && profile.ID == b.InstructorID {
			return Ownership{Actor: ActorInstructor, Instructor: profile}, nil
		}
	}

	return Ownership{}, nil
}

// ForSlot applies the same pattern to slot ownership: only the publishing
// instructor owns a slot, students never do.
func (r *Resolver) ForSlot(ctx context.Context, ident domain.Identity, s *domain.Slot) (Ownership, error) {
	if ident.Role != domain.RoleInstructor {
		return Ownership{}, nil
	}

	profile, err := r.profile(ctx, ident.UID)
	if err != nil {
		return Ownership{}, err
	}
	if profile != nil && profile.ID == s.InstructorID {
		return Ownership{Actor: ActorInstructor, Instructor: profile}, nil
	}
	return Ownership{}, nil
}

func (r *Resolver) profile(ctx context.Context, userID int64) (*domain.Instructor, error) {
	profile, err := r.instructors.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
