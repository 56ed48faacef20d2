package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"beanleaf/internal/model"
	"beanleaf/internal/repository"
	"beanleaf/internal/util"
)

const (
	NotificationQueueName  = "notification_queue"
	NotificationExchange   = "notification_exchange"
	notificationRoutingKey = "notification"
)

// NotificationMessage is the payload published to RabbitMQ for async
// delivery over WebSocket.
type NotificationMessage struct {
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type NotificationService interface {
	SendFriendRequestNotification(receiverID, senderID, senderEmail, requestID string) error
	SendFriendAcceptedNotification(receiverID, senderID, senderEmail, requestID string) error
	GetNotifications(userID string, limit, offset int) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	SetWSHub(hub interface {
		BroadcastToUser(string, map[string]interface{})
	})
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
	wsHub     interface {
		BroadcastToUser(string, map[string]interface{})
	}
}

func NewNotificationService(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
	}
}

// SetWSHub sets the WebSocket hub for realtime pushes
func (s *notificationService) SetWSHub(hub interface {
	BroadcastToUser(string, map[string]interface{})
}) {
	s.wsHub = hub
}

func (s *notificationService) SendFriendRequestNotification(receiverID, senderID, senderEmail, requestID string) error {
	return s.sendNotification(
		receiverID,
		model.NotificationTypeFriendRequest,
		"New friend request",
		fmt.Sprintf("%s sent you a friend request", senderEmail),
		map[string]interface{}{
			"sender_id":         senderID,
			"sender_email":      senderEmail,
			"friend_request_id": requestID,
		},
	)
}

func (s *notificationService) SendFriendAcceptedNotification(receiverID, senderID, senderEmail, requestID string) error {
	return s.sendNotification(
		receiverID,
		model.NotificationTypeFriendAccepted,
		"Friend request accepted",
		fmt.Sprintf("%s accepted your friend request", senderEmail),
		map[string]interface{}{
			"sender_id":         senderID,
			"sender_email":      senderEmail,
			"friend_request_id": requestID,
		},
	)
}

// sendNotification persists the notification, publishes it to RabbitMQ
// for the worker, and pushes it directly over WebSocket as a fallback.
func (s *notificationService) sendNotification(
	userID, notifType, title, message string,
	data map[string]interface{},
) error {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}

	if data != nil {
		if senderID, ok := data["sender_id"].(string); ok {
			notification.SenderID = &senderID
		}
		if targetID, ok := data["friend_request_id"].(string); ok {
			notification.TargetID = &targetID
		}
		if dataJSON, err := json.Marshal(data); err == nil {
			notification.Data = string(dataJSON)
		}
	}

	if err := s.notifRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	published := false
	if s.rabbitMQ != nil {
		msg := NotificationMessage{
			UserID:    userID,
			Type:      notifType,
			Title:     title,
			Message:   message,
			Data:      data,
			Timestamp: time.Now(),
		}

		if msgJSON, err := json.Marshal(msg); err == nil {
			if err := s.rabbitMQ.Publish(NotificationExchange, notificationRoutingKey, msgJSON); err != nil {
				log.Printf("Failed to publish notification: %v", err)
			} else {
				published = true
			}
		}
	}

	// Without a broker the push happens inline
	if !published && s.wsHub != nil {
		s.wsHub.BroadcastToUser(userID, map[string]interface{}{
			"type":    notifType,
			"title":   title,
			"message": message,
			"data":    data,
		})
	}

	return nil
}

func (s *notificationService) GetNotifications(userID string, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notifRepo.FindByUserID(userID, limit, offset)
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnreadByUserID(userID)
}

func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	return s.notifRepo.MarkAsRead(notificationID, userID)
}
