package service

import (
	"errors"
	"fmt"

	"beanleaf/internal/errs"
	"beanleaf/internal/model"
	"beanleaf/internal/repository"

	"gorm.io/gorm"
)

// FriendState is the resolved view of a user's friend graph: requests
// waiting on them, and their accepted friendships. Every friendship row
// carries both endpoints so the caller can tell which side is "me"
// without another query.
type FriendState struct {
	PendingRequests []*model.FriendRequest `json:"pending_requests"`
	Friends         []*model.FriendRequest `json:"friends"`
}

// Candidate is a search hit annotated with the relationship between the
// searcher and the matched profile, if any.
type Candidate struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name,omitempty"`
	Status    *string `json:"status"`              // PENDING, ACCEPTED or null
	Direction string  `json:"direction,omitempty"` // sent or received
}

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

type FriendService interface {
	ResolveFriendState(userID string) (*FriendState, error)
	SearchCandidates(userID, emailFragment string) ([]Candidate, error)
	SendFriendRequest(fromUserID, toUserID string) (*model.FriendRequest, error)
	AcceptFriendRequest(requestID, userID string) (*model.FriendRequest, error)
	RemoveFriendRequest(requestID, userID string) error
}

type friendService struct {
	friendRepo   repository.FriendRequestRepository
	profileRepo  repository.ProfileRepository
	notifService NotificationService
}

func NewFriendService(
	friendRepo repository.FriendRequestRepository,
	profileRepo repository.ProfileRepository,
	notifService NotificationService,
) FriendService {
	return &friendService{
		friendRepo:   friendRepo,
		profileRepo:  profileRepo,
		notifService: notifService,
	}
}

// ResolveFriendState derives the pending-incoming and accepted-friend
// views from the raw relationship rows. Read-only.
func (s *friendService) ResolveFriendState(userID string) (*FriendState, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	pending, err := s.friendRepo.FindPendingByReceiverID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending requests: %w", err)
	}

	friends, err := s.friendRepo.FindAcceptedByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}

	if pending == nil {
		pending = []*model.FriendRequest{}
	}
	if friends == nil {
		friends = []*model.FriendRequest{}
	}

	return &FriendState{
		PendingRequests: pending,
		Friends:         friends,
	}, nil
}

// SearchCandidates matches profiles by email substring and annotates
// each hit with the existing relationship, if any. Matches with an
// existing relationship stay in the result so the caller can render
// "pending" or "already friends" instead of hiding them.
func (s *friendService) SearchCandidates(userID, emailFragment string) ([]Candidate, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if emailFragment == "" {
		return nil, errs.NewValidation("search string cannot be empty")
	}

	profiles, err := s.profileRepo.SearchByEmail(emailFragment, userID, 50)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	candidates := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == userID {
			// excludeID filter should have handled this; keep the
			// invariant regardless of the store's behavior
			continue
		}

		candidate := Candidate{
			ID:       p.ID,
			Email:    p.Email,
			FullName: p.FullName,
		}

		existing, err := s.friendRepo.FindBetween(userID, p.ID)
		switch {
		case err == nil:
			status := existing.Status
			candidate.Status = &status
			if existing.FromUserID == userID {
				candidate.Direction = DirectionSent
			} else {
				candidate.Direction = DirectionReceived
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no relationship; status stays null
		default:
			return nil, fmt.Errorf("relationship lookup failed: %w", err)
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// SendFriendRequest creates a PENDING row after checking that no row
// already connects the pair. The existence check is order-independent,
// so a reverse-direction request cannot create a second row.
func (s *friendService) SendFriendRequest(fromUserID, toUserID string) (*model.FriendRequest, error) {
	if fromUserID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if toUserID == "" {
		return nil, errs.NewValidation("to_user_id is required")
	}
	if fromUserID == toUserID {
		return nil, errs.ErrSelfRequest
	}

	if _, err := s.profileRepo.FindByID(toUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("receiver lookup failed: %w", err)
	}

	existing, err := s.friendRepo.FindBetween(fromUserID, toUserID)
	if err == nil && existing != nil {
		if existing.Status == model.FriendRequestStatusAccepted {
			return nil, errs.ErrAlreadyFriends
		}
		return nil, errs.ErrAlreadyRequested
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("relationship lookup failed: %w", err)
	}

	request := &model.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     model.FriendRequestStatusPending,
	}

	if err := s.friendRepo.Create(request); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	if s.notifService != nil {
		go func() {
			sender, _ := s.profileRepo.FindByID(fromUserID)
			senderEmail := fromUserID
			if sender != nil {
				senderEmail = sender.Email
			}
			s.notifService.SendFriendRequestNotification(toUserID, fromUserID, senderEmail, request.ID)
		}()
	}

	return s.friendRepo.FindByID(request.ID)
}

// AcceptFriendRequest flips a pending row to ACCEPTED in place. Only
// the receiver may accept. Accepting an already-accepted row is a no-op.
func (s *friendService) AcceptFriendRequest(requestID, userID string) (*model.FriendRequest, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	request, err := s.friendRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("request lookup failed: %w", err)
	}

	if request.ToUserID != userID {
		return nil, errs.ErrUnauthorized
	}

	if request.Status == model.FriendRequestStatusAccepted {
		return request, nil
	}

	request.Status = model.FriendRequestStatusAccepted
	if err := s.friendRepo.Update(request); err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}

	if s.notifService != nil {
		go func() {
			receiver, _ := s.profileRepo.FindByID(userID)
			receiverEmail := userID
			if receiver != nil {
				receiverEmail = receiver.Email
			}
			s.notifService.SendFriendAcceptedNotification(request.FromUserID, userID, receiverEmail, request.ID)
		}()
	}

	return s.friendRepo.FindByID(request.ID)
}

// RemoveFriendRequest deletes the row, serving reject, cancel and
// unfriend alike. Only a participant may delete it.
func (s *friendService) RemoveFriendRequest(requestID, userID string) error {
	if userID == "" {
		return errs.ErrNotAuthenticated
	}

	request, err := s.friendRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("request lookup failed: %w", err)
	}

	if !request.Involves(userID) {
		return errs.ErrUnauthorized
	}

	if err := s.friendRepo.Delete(requestID); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}

	return nil
}
