package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"driveconnect/internal/domain"
)

type InstructorRepository struct {
	db *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

type instructorModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	UserID            int64      `gorm:"column:user_id;uniqueIndex"`
	Rating            float64    `gorm:"column:rating"`
	TotalReviews      int        `gorm:"column:total_reviews"`
	Experience        int        `gorm:"column:experience"`
	Location          string     `gorm:"column:location"`
	PhoneNumber       *string    `gorm:"column:phone_number"`
	HourlyRate        int64      `gorm:"column:hourly_rate"`
	IsOnline          bool       `gorm:"column:is_online"`
	Lat               float64    `gorm:"column:lat"`
	Lng               float64    `gorm:"column:lng"`
	Verified          bool       `gorm:"column:verified"`
	PenaltyUntil      *time.Time `gorm:"column:penalty_until"`
	VisibilityPenalty int        `gorm:"column:visibility_penalty"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (instructorModel) TableName() string { return "instructors" }

func toDomainInstructor(m instructorModel) *domain.Instructor {
	var phone string
	if m.PhoneNumber != nil {
		phone = *m.PhoneNumber
	}

	return &domain.Instructor{
		ID:                m.ID,
		UserID:            m.UserID,
		Rating:            m.Rating,
		TotalReviews:      m.TotalReviews,
		Experience:        m.Experience,
		Location:          m.Location,
		PhoneNumber:       phone,
		HourlyRate:        m.HourlyRate,
		IsOnline:          m.IsOnline,
		Lat:               m.Lat,
		Lng:               m.Lng,
		Verified:          m.Verified,
		PenaltyUntil:      m.PenaltyUntil,
		VisibilityPenalty: m.VisibilityPenalty,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toInstructorModel(i *domain.Instructor) instructorModel {
	var phone *string
	if i.PhoneNumber != "" {
		v := i.PhoneNumber
		phone = &v
	}

	return instructorModel{
		ID:                i.ID,
		UserID:            i.UserID,
		Rating:            i.Rating,
		TotalReviews:      i.TotalReviews,
		Experience:        i.Experience,
		Location:          i.Location,
		PhoneNumber:       phone,
		HourlyRate:        i.HourlyRate,
		IsOnline:          i.IsOnline,
		Lat:               i.Lat,
		Lng:               i.Lng,
		Verified:          i.Verified,
		PenaltyUntil:      i.PenaltyUntil,
		VisibilityPenalty: i.VisibilityPenalty,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func (r *InstructorRepository) Create(ctx context.Context, i *domain.Instructor) error {
	m := toInstructorModel(i)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*i = *toDomainInstructor(m)
	return nil
}

func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*domain.Instructor, error) {
	var m instructorModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainInstructor(m), nil
}

func (r *InstructorRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error) {
	var m instructorModel
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainInstructor(m), nil
}

// UpdateProfile writes only the instructor-editable fields. Rating, review
// count, verification and penalty state have their own write paths.
func (r *InstructorRepository) UpdateProfile(ctx context.Context, i *domain.Instructor) error {
	var phone *string
	if i.PhoneNumber != "" {
		v := i.PhoneNumber
		phone = &v
	}
	return r.db.WithContext(ctx).Model(&instructorModel{}).
		Where("id = ?", i.ID).
		Updates(map[string]any{
			"location":     i.Location,
			"phone_number": phone,
			"hourly_rate":  i.HourlyRate,
			"experience":   i.Experience,
			"is_online":    i.IsOnline,
			"lat":          i.Lat,
			"lng":          i.Lng,
		}).Error
}

// ApplyPenalty records a visibility demerit that ranking reads until the
// deadline passes.
func (r *InstructorRepository) ApplyPenalty(ctx context.Context, id int64, until time.Time, points int) error {
	return r.db.WithContext(ctx).Model(&instructorModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"penalty_until":      until,
			"visibility_penalty": points,
		}).Error
}

// InstructorListing is an instructor row joined with its account name and
// email for the public discovery listing.
type InstructorListing struct {
	Instructor domain.Instructor
	Name       string
	Email      string
}

// ListVerified returns verified instructors ordered by raw rating descending.
// Penalty-aware ordering is applied on top of this by the ranking service;
// the fetch order is what breaks score ties.
func (r *InstructorRepository) ListVerified(ctx context.Context) ([]InstructorListing, error) {
	var models []instructorModel
	tx := r.db.WithContext(ctx).
		Where("verified = ?", true).
		Order("rating DESC").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	type accountRow struct {
		ID    int64  `gorm:"column:id"`
		Name  string `gorm:"column:name"`
		Email string `gorm:"column:email"`
	}
	var accounts []accountRow
	if len(models) > 0 {
		userIDs := make([]int64, 0, len(models))
		for _, m := range models {
			userIDs = append(userIDs, m.UserID)
		}
		if err := r.db.WithContext(ctx).Raw(
			`SELECT id, name, email FROM users WHERE id IN ?`, userIDs,
		).Scan(&accounts).Error; err != nil {
			return nil, err
		}
	}

	byUser := make(map[int64]accountRow, len(accounts))
	for _, a := range accounts {
		byUser[a.ID] = a
	}

	out := make([]InstructorListing, 0, len(models))
	for _, m := range models {
		acc := byUser[m.UserID]
		out = append(out, InstructorListing{
			Instructor: *toDomainInstructor(m),
			Name:       acc.Name,
			Email:      acc.Email,
		})
	}
	return out, nil
}
