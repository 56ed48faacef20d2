package repository

import (
	"encoding/json"
	"time"

	"beanleaf/internal/model"
	"beanleaf/internal/util"

	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(location *model.SavedLocation) error
	FindByUserID(userID string) ([]model.SavedLocation, error)
	// FindAll returns every location, newest first (explore feed).
	FindAll(limit, offset int) ([]model.SavedLocation, error)
	// DeleteByIDAndUserID deletes the row only when it belongs to
	// userID and reports how many rows matched.
	DeleteByIDAndUserID(id, userID string) (int64, error)
}

type locationRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	locationByUserCachePrefix = "locations:user:"
	locationCacheTTL          = 10 * time.Minute
)

func NewLocationRepository(db *gorm.DB, redis *util.RedisClient) LocationRepository {
	return &locationRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new saved location
func (r *locationRepository) Create(location *model.SavedLocation) error {
	if err := r.db.Create(location).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(locationByUserCachePrefix + location.UserID)
	}
	return nil
}

// FindByUserID returns all locations owned by the user
func (r *locationRepository) FindByUserID(userID string) ([]model.SavedLocation, error) {
	if r.redis != nil {
		if cached, err := r.redis.Get(locationByUserCachePrefix + userID); err == nil {
			var locations []model.SavedLocation
			if err := json.Unmarshal([]byte(cached), &locations); err == nil {
				return locations, nil
			}
		}
	}

	var locations []model.SavedLocation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(locations); err == nil {
			r.redis.Set(locationByUserCachePrefix+userID, string(data), locationCacheTTL)
		}
	}

	return locations, nil
}

// FindAll returns all locations newest first
func (r *locationRepository) FindAll(limit, offset int) ([]model.SavedLocation, error) {
	var locations []model.SavedLocation
	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// DeleteByIDAndUserID deletes a location bound to its owner
func (r *locationRepository) DeleteByIDAndUserID(id, userID string) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.SavedLocation{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 && r.redis != nil {
		r.redis.Delete(locationByUserCachePrefix + userID)
	}

	return result.RowsAffected, nil
}
