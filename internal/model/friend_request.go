package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendRequest is a directed relationship row. Once accepted it denotes
// a symmetric friendship regardless of which side created it.
type FriendRequest struct {
	ID         string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FromUserID string    `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID   string    `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Status     string    `gorm:"type:varchar(20);default:'PENDING';not null" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Sender   Profile `gorm:"foreignKey:FromUserID;references:ID" json:"sender,omitempty"`
	Receiver Profile `gorm:"foreignKey:ToUserID;references:ID" json:"receiver,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friend request status constants
const (
	FriendRequestStatusPending  = "PENDING"
	FriendRequestStatusAccepted = "ACCEPTED"
)

// CounterpartID returns the endpoint of the row that is not userID.
func (f *FriendRequest) CounterpartID(userID string) string {
	if f.FromUserID == userID {
		return f.ToUserID
	}
	return f.FromUserID
}

// Involves reports whether userID is one of the row's endpoints.
func (f *FriendRequest) Involves(userID string) bool {
	return f.FromUserID == userID || f.ToUserID == userID
}
