package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"driveconnect/internal/domain"
	jwtsvc "driveconnect/internal/pkg/jwt"
)

const bcryptCost = 12

// New instructor accounts start with an unverified Nouméa profile; discovery
// only lists them once an operator flips the verified flag.
var defaultInstructorProfile = domain.Instructor{
	Location:   "Nouméa",
	HourlyRate: 4500,
	Lat:        -22.2758,
	Lng:        166.4580,
}

type Service struct {
	users       UserStore
	instructors InstructorStore
	jwt         *jwtsvc.Service
	log         *zap.Logger
}

func NewService(users UserStore, instructors InstructorStore, jwt *jwtsvc.Service, log *zap.Logger) *Service {
	return &Service{
		users:       users,
		instructors: instructors,
		jwt:         jwt,
		log:         log,
	}
}

// Register creates an account and, for instructors, the attached profile.
// When the profile insert fails the fresh user row is deleted again so the
// email does not end up burned on a half-created account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == domain.RoleInstructor {
		profile := defaultInstructorProfile
		profile.UserID = user.ID
		if err := s.instructors.Create(ctx, &profile); err != nil {
			s.log.Warn("instructor profile insert failed, deleting user",
				zap.Int64("user_id", user.ID), zap.Error(err))
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				s.log.Error("compensating user delete failed",
					zap.Int64("user_id", user.ID), zap.Error(delErr))
			}
			return nil, err
		}
	}

	return s.respond(user)
}

// Login checks the credentials. Unknown email, wrong password and role
// mismatch all return the same error, and the unknown-email path still pays
// for a hash so response timing does not give the difference away.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcryptCost)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if req.Role != "" && domain.UserRole(req.Role) != user.Role {
		_, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcryptCost)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *Service) Me(ctx context.Context, uid int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) respond(user *domain.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(domain.Identity{
		UID:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User: UserPublic{
			UID:   user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  string(user.Role),
		},
	}, nil
}
