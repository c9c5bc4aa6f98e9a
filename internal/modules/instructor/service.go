package instructor

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"driveconnect/internal/domain"
)

type Params struct {
	MinHourlyRate int64
}

func DefaultParams() Params {
	return Params{MinHourlyRate: 1000}
}

type Service struct {
	instructors InstructorStore
	params      Params
	now         func() time.Time
}

func NewService(instructors InstructorStore, params Params) *Service {
	return &Service{
		instructors: instructors,
		params:      params,
		now:         time.Now,
	}
}

// Score is the discovery ordering key: rating scaled to points, minus the
// visibility penalty while it is active. Expired penalties weigh nothing, no
// cleanup pass needed.
func Score(i *domain.Instructor, now time.Time) float64 {
	score := i.Rating * 100
	if i.PenaltyActive(now) {
		score -= float64(i.VisibilityPenalty)
	}
	return score
}

// List returns verified instructors ranked by score, descending. The sort is
// stable over the store's rating-descending fetch order, so equal scores keep
// the higher raw rating first.
func (s *Service) List(ctx context.Context) ([]InstructorView, error) {
	rows, err := s.instructors.ListVerified(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]InstructorView, 0, len(rows))
	for _, row := range rows {
		i := row.Instructor
		views = append(views, InstructorView{
			ID:                i.ID,
			UID:               i.UserID,
			Name:              row.Name,
			Email:             row.Email,
			Rating:            i.Rating,
			TotalReviews:      i.TotalReviews,
			Experience:        i.Experience,
			Location:          i.Location,
			HourlyRate:        i.HourlyRate,
			PhoneNumber:       i.PhoneNumber,
			Verified:          i.Verified,
			IsOnline:          i.IsOnline,
			Lat:               i.Lat,
			Lng:               i.Lng,
			PenaltyUntil:      i.PenaltyUntil,
			VisibilityPenalty: i.VisibilityPenalty,
			Score:             Score(&i, now),
		})
	}

	sort.SliceStable(views, func(a, b int) bool {
		return views[a].Score > views[b].Score
	})

	return views, nil
}

func (s *Service) Me(ctx context.Context, callerUID int64) (*domain.Instructor, error) {
	profile, err := s.instructors.GetByUserID(ctx, callerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateMe applies the caller's partial profile update. Rating, verification
// and penalty state stay server-owned.
func (s *Service) UpdateMe(ctx context.Context, callerUID int64, req UpdateProfileRequest) (*domain.Instructor, error) {
	profile, err := s.Me(ctx, callerUID)
	if err != nil {
		return nil, err
	}

	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < s.params.MinHourlyRate {
			return nil, ErrRateTooLow
		}
		profile.HourlyRate = *req.HourlyRate
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.IsOnline != nil {
		profile.IsOnline = *req.IsOnline
	}
	if req.Lat != nil {
		profile.Lat = *req.Lat
	}
	if req.Lng != nil {
		profile.Lng = *req.Lng
	}

	if err := s.instructors.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
