package repository

import (
	"encoding/json"
	"time"

	"beanleaf/internal/model"
	"beanleaf/internal/util"

	"gorm.io/gorm"
)

type FriendRequestRepository interface {
	Create(request *model.FriendRequest) error
	FindByID(id string) (*model.FriendRequest, error)
	// FindBetween returns the first row connecting the two users in
	// either direction, any status. gorm.ErrRecordNotFound if none.
	FindBetween(userA, userB string) (*model.FriendRequest, error)
	FindPendingByReceiverID(receiverID string) ([]*model.FriendRequest, error)
	FindAcceptedByUserID(userID string) ([]*model.FriendRequest, error)
	Update(request *model.FriendRequest) error
	Delete(id string) error
}

type friendRequestRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	friendRequestCachePrefix  = "friendreq:"
	friendPendingCachePrefix  = "friendreq:pending:"
	friendAcceptedCachePrefix = "friendreq:accepted:"
	friendRequestCacheTTL     = 15 * time.Minute
)

func NewFriendRequestRepository(db *gorm.DB, redis *util.RedisClient) FriendRequestRepository {
	return &friendRequestRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new friend request row
func (r *friendRequestRepository) Create(request *model.FriendRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		return err
	}

	r.invalidateFor(request)
	return nil
}

// FindByID finds a friend request by ID with both endpoints expanded
func (r *friendRequestRepository) FindByID(id string) (*model.FriendRequest, error) {
	if r.redis != nil {
		if cached, err := r.getFromCache(friendRequestCachePrefix + id); err == nil && cached != nil {
			return cached, nil
		}
	}

	var request model.FriendRequest
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		r.cacheRequest(&request)
	}

	return &request, nil
}

// FindBetween finds the relationship row between two users regardless of
// which side created it.
func (r *friendRequestRepository) FindBetween(userA, userB string) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPendingByReceiverID returns pending requests addressed to the user,
// with the sender's profile expanded.
func (r *friendRequestRepository) FindPendingByReceiverID(receiverID string) ([]*model.FriendRequest, error) {
	if r.redis != nil {
		if cached, err := r.getListFromCache(friendPendingCachePrefix + receiverID); err == nil && cached != nil {
			return cached, nil
		}
	}

	var requests []*model.FriendRequest
	err := r.db.Preload("Sender").
		Where("to_user_id = ? AND status = ?", receiverID, model.FriendRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		r.cacheList(friendPendingCachePrefix+receiverID, requests)
	}

	return requests, nil
}

// FindAcceptedByUserID returns accepted friendships with the user at
// either endpoint, both profiles expanded.
func (r *friendRequestRepository) FindAcceptedByUserID(userID string) ([]*model.FriendRequest, error) {
	if r.redis != nil {
		if cached, err := r.getListFromCache(friendAcceptedCachePrefix + userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	var requests []*model.FriendRequest
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?",
			userID, userID, model.FriendRequestStatusAccepted).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		r.cacheList(friendAcceptedCachePrefix+userID, requests)
	}

	return requests, nil
}

// Update saves a friend request in place
func (r *friendRequestRepository) Update(request *model.FriendRequest) error {
	if err := r.db.Save(request).Error; err != nil {
		return err
	}

	r.invalidateFor(request)
	return nil
}

// Delete removes a friend request row by id
func (r *friendRequestRepository) Delete(id string) error {
	var request model.FriendRequest
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&request).Error; err != nil {
		return err
	}

	r.invalidateFor(&request)
	return nil
}

// Cache helpers

func (r *friendRequestRepository) cacheRequest(request *model.FriendRequest) {
	data, err := json.Marshal(request)
	if err != nil {
		return
	}
	r.redis.Set(friendRequestCachePrefix+request.ID, string(data), friendRequestCacheTTL)
}

func (r *friendRequestRepository) cacheList(key string, requests []*model.FriendRequest) {
	data, err := json.Marshal(requests)
	if err != nil {
		return
	}
	r.redis.Set(key, string(data), friendRequestCacheTTL)
}

func (r *friendRequestRepository) getFromCache(key string) (*model.FriendRequest, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var request model.FriendRequest
	if err := json.Unmarshal([]byte(cached), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *friendRequestRepository) getListFromCache(key string) ([]*model.FriendRequest, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var requests []*model.FriendRequest
	if err := json.Unmarshal([]byte(cached), &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// invalidateFor drops every cached view a row mutation can affect.
func (r *friendRequestRepository) invalidateFor(request *model.FriendRequest) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(friendRequestCachePrefix + request.ID)
	r.redis.Delete(friendPendingCachePrefix + request.ToUserID)
	r.redis.Delete(friendAcceptedCachePrefix + request.FromUserID)
	r.redis.Delete(friendAcceptedCachePrefix + request.ToUserID)
}
