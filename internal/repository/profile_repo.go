package repository

import (
	"beanleaf/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	FindByID(id string) (*model.Profile, error)
	SearchByEmail(fragment string, excludeID string, limit int) ([]model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SearchByEmail returns profiles whose email contains the fragment
// (case-insensitive), excluding the given user id.
func (r *profileRepository) SearchByEmail(fragment string, excludeID string, limit int) ([]model.Profile, error) {
	var profiles []model.Profile
	pattern := "%" + fragment + "%"

	query := r.db.Where("email ILIKE ?", pattern)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
