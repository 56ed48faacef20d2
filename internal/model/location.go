package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedLocation is a user-authored, geotagged drink review pin.
type SavedLocation struct {
	ID           string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	LocationName string    `gorm:"type:varchar(255);not null" json:"location_name"`
	Description  string    `gorm:"type:text" json:"description"`
	DrinkType    string    `gorm:"type:varchar(100)" json:"drink_type"`
	Rating       float64   `gorm:"type:numeric(2,1);not null" json:"rating"`
	Latitude     float64   `gorm:"column:location_latitude;not null" json:"location_latitude"`
	Longitude    float64   `gorm:"column:location_longitude;not null" json:"location_longitude"`
	ImageURL     *string   `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Set when the location is returned as part of a friend's list;
	// not persisted.
	UserEmail string `gorm:"-" json:"user_email,omitempty"`

	// Relationship
	Owner Profile `gorm:"foreignKey:UserID;references:ID" json:"owner,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *SavedLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (SavedLocation) TableName() string {
	return "my_locations"
}
