package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"beanleaf/internal/errs"
	"beanleaf/internal/model"

	"gorm.io/gorm"
)

type inMemoryFriendRepo struct {
	requests map[string]*model.FriendRequest
	profiles map[string]model.Profile
	nextID   int
}

func newInMemoryFriendRepo(profiles ...model.Profile) *inMemoryFriendRepo {
	repo := &inMemoryFriendRepo{
		requests: make(map[string]*model.FriendRequest),
		profiles: make(map[string]model.Profile),
	}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *inMemoryFriendRepo) expand(request model.FriendRequest) *model.FriendRequest {
	request.Sender = r.profiles[request.FromUserID]
	request.Receiver = r.profiles[request.ToUserID]
	return &request
}

func (r *inMemoryFriendRepo) Create(request *model.FriendRequest) error {
	if request.ID == "" {
		r.nextID++
		request.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *inMemoryFriendRepo) FindByID(id string) (*model.FriendRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.expand(*request), nil
}

func (r *inMemoryFriendRepo) FindBetween(userA, userB string) (*model.FriendRequest, error) {
	for _, request := range r.requests {
		if (request.FromUserID == userA && request.ToUserID == userB) ||
			(request.FromUserID == userB && request.ToUserID == userA) {
			return r.expand(*request), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *inMemoryFriendRepo) FindPendingByReceiverID(receiverID string) ([]*model.FriendRequest, error) {
	var out []*model.FriendRequest
	for _, request := range r.requests {
		if request.ToUserID == receiverID && request.Status == model.FriendRequestStatusPending {
			out = append(out, r.expand(*request))
		}
	}
	return out, nil
}

func (r *inMemoryFriendRepo) FindAcceptedByUserID(userID string) ([]*model.FriendRequest, error) {
	var out []*model.FriendRequest
	for _, request := range r.requests {
		if request.Status == model.FriendRequestStatusAccepted &&
			(request.FromUserID == userID || request.ToUserID == userID) {
			out = append(out, r.expand(*request))
		}
	}
	return out, nil
}

func (r *inMemoryFriendRepo) Update(request *model.FriendRequest) error {
	if _, ok := r.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *inMemoryFriendRepo) Delete(id string) error {
	if _, ok := r.requests[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.requests, id)
	return nil
}

type inMemoryProfileRepo struct {
	profiles map[string]model.Profile
}

func newInMemoryProfileRepo(profiles ...model.Profile) *inMemoryProfileRepo {
	repo := &inMemoryProfileRepo{profiles: make(map[string]model.Profile)}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *inMemoryProfileRepo) FindByID(id string) (*model.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *inMemoryProfileRepo) SearchByEmail(fragment string, excludeID string, limit int) ([]model.Profile, error) {
	var out []model.Profile
	lower := strings.ToLower(fragment)
	for _, p := range r.profiles {
		if p.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Email), lower) {
			out = append(out, p)
		}
	}
	return out, nil
}

var (
	alice = model.Profile{ID: "U1", Email: "alice@x.com"}
	bob   = model.Profile{ID: "U2", Email: "bob@x.com"}
	carol = model.Profile{ID: "U3", Email: "carol@x.com"}
)

func newFriendServiceForTest(requests ...*model.FriendRequest) (FriendService, *inMemoryFriendRepo) {
	friendRepo := newInMemoryFriendRepo(alice, bob, carol)
	for _, request := range requests {
		friendRepo.Create(request)
	}
	profileRepo := newInMemoryProfileRepo(alice, bob, carol)
	return NewFriendService(friendRepo, profileRepo, nil), friendRepo
}

func TestSearchCandidatesExcludesSelf(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	candidates, err := svc.SearchCandidates("U1", "x.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for _, candidate := range candidates {
		if candidate.ID == "U1" {
			t.Fatalf("search result contains the caller")
		}
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
}

func TestSearchCandidatesNoRelationship(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	candidates, err := svc.SearchCandidates("U1", "bob")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.ID != "U2" || got.Email != "bob@x.com" {
		t.Fatalf("unexpected candidate: %+v", got)
	}
	if got.Status != nil {
		t.Fatalf("expected null status, got %q", *got.Status)
	}
	if got.Direction != "" {
		t.Fatalf("expected empty direction, got %q", got.Direction)
	}
}

func TestSearchCandidatesAnnotatesStatusAndDirection(t *testing.T) {
	cases := []struct {
		name          string
		request       *model.FriendRequest
		caller        string
		wantStatus    string
		wantDirection string
	}{
		{
			name:          "pending sent by caller",
			request:       &model.FriendRequest{FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
			caller:        "U1",
			wantStatus:    model.FriendRequestStatusPending,
			wantDirection: DirectionSent,
		},
		{
			name:          "pending received by caller",
			request:       &model.FriendRequest{FromUserID: "U2", ToUserID: "U1", Status: model.FriendRequestStatusPending},
			caller:        "U1",
			wantStatus:    model.FriendRequestStatusPending,
			wantDirection: DirectionReceived,
		},
		{
			name:          "accepted",
			request:       &model.FriendRequest{FromUserID: "U2", ToUserID: "U1", Status: model.FriendRequestStatusAccepted},
			caller:        "U1",
			wantStatus:    model.FriendRequestStatusAccepted,
			wantDirection: DirectionReceived,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newFriendServiceForTest(tc.request)

			candidates, err := svc.SearchCandidates(tc.caller, "bob")
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(candidates) != 1 {
				t.Fatalf("expected candidate with existing relationship to stay in results")
			}

			got := candidates[0]
			if got.Status == nil || *got.Status != tc.wantStatus {
				t.Fatalf("expected status %q, got %v", tc.wantStatus, got.Status)
			}
			if got.Direction != tc.wantDirection {
				t.Fatalf("expected direction %q, got %q", tc.wantDirection, got.Direction)
			}
		})
	}
}

func TestSearchCandidatesEmptyFragment(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	if _, err := svc.SearchCandidates("U1", ""); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveFriendStatePendingIncoming(t *testing.T) {
	svc, _ := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
	)

	state, err := svc.ResolveFriendState("U2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(state.PendingRequests) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(state.PendingRequests))
	}
	pending := state.PendingRequests[0]
	if pending.ID != "R1" || pending.FromUserID != "U1" {
		t.Fatalf("unexpected pending request: %+v", pending)
	}
	if pending.Sender.Email != "alice@x.com" {
		t.Fatalf("expected sender email to be expanded, got %q", pending.Sender.Email)
	}
	if len(state.Friends) != 0 {
		t.Fatalf("expected no friends, got %d", len(state.Friends))
	}

	// The sender must not see the request as pending incoming
	senderState, err := svc.ResolveFriendState("U1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(senderState.PendingRequests) != 0 {
		t.Fatalf("sender should have no pending incoming requests")
	}
}

func TestResolveFriendStateAcceptedSymmetry(t *testing.T) {
	svc, _ := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusAccepted},
	)

	for _, userID := range []string{"U1", "U2"} {
		state, err := svc.ResolveFriendState(userID)
		if err != nil {
			t.Fatalf("resolve for %s: %v", userID, err)
		}

		if len(state.PendingRequests) != 0 {
			t.Fatalf("expected no pending requests for %s", userID)
		}
		if len(state.Friends) != 1 {
			t.Fatalf("expected exactly 1 friendship for %s, got %d", userID, len(state.Friends))
		}

		friend := state.Friends[0]
		if friend.ID != "R1" || friend.FromUserID != "U1" || friend.ToUserID != "U2" {
			t.Fatalf("unexpected friendship row for %s: %+v", userID, friend)
		}
		if friend.Sender.Email != "alice@x.com" || friend.Receiver.Email != "bob@x.com" {
			t.Fatalf("expected both endpoints expanded for %s", userID)
		}
		if friend.CounterpartID(userID) == userID {
			t.Fatalf("counterpart resolution failed for %s", userID)
		}
	}
}

func TestResolveFriendStateRequiresPrincipal(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	if _, err := svc.ResolveFriendState(""); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSendFriendRequest(t *testing.T) {
	svc, repo := newFriendServiceForTest()

	request, err := svc.SendFriendRequest("U1", "U2")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if request.Status != model.FriendRequestStatusPending {
		t.Fatalf("expected PENDING status, got %q", request.Status)
	}
	if request.FromUserID != "U1" || request.ToUserID != "U2" {
		t.Fatalf("unexpected direction: %+v", request)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("expected exactly 1 stored row, got %d", len(repo.requests))
	}
}

func TestSendFriendRequestDuplicateSuppression(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{name: "same direction", from: "U1", to: "U2", wantErr: errs.ErrAlreadyRequested},
		{name: "reverse direction", from: "U2", to: "U1", wantErr: errs.ErrAlreadyRequested},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newFriendServiceForTest(
				&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
			)

			_, err := svc.SendFriendRequest(tc.from, tc.to)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if len(repo.requests) != 1 {
				t.Fatalf("expected no new row, got %d rows", len(repo.requests))
			}
		})
	}
}

func TestSendFriendRequestAlreadyFriends(t *testing.T) {
	svc, _ := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U2", ToUserID: "U1", Status: model.FriendRequestStatusAccepted},
	)

	if _, err := svc.SendFriendRequest("U1", "U2"); !errors.Is(err, errs.ErrAlreadyFriends) {
		t.Fatalf("expected ErrAlreadyFriends, got %v", err)
	}
}

func TestSendFriendRequestRejectsSelf(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	if _, err := svc.SendFriendRequest("U1", "U1"); !errors.Is(err, errs.ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
}

func TestSendFriendRequestUnknownReceiver(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	if _, err := svc.SendFriendRequest("U1", "nobody"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	svc, repo := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
	)

	accepted, err := svc.AcceptFriendRequest("R1", "U2")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.FriendRequestStatusAccepted {
		t.Fatalf("expected ACCEPTED, got %q", accepted.Status)
	}
	if repo.requests["R1"].Status != model.FriendRequestStatusAccepted {
		t.Fatalf("status not persisted")
	}

	// Accepting again is a no-op
	if _, err := svc.AcceptFriendRequest("R1", "U2"); err != nil {
		t.Fatalf("repeat accept: %v", err)
	}
}

func TestAcceptFriendRequestOnlyReceiver(t *testing.T) {
	cases := []struct {
		name   string
		caller string
	}{
		{name: "sender", caller: "U1"},
		{name: "third party", caller: "U3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newFriendServiceForTest(
				&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
			)

			if _, err := svc.AcceptFriendRequest("R1", tc.caller); !errors.Is(err, errs.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if repo.requests["R1"].Status != model.FriendRequestStatusPending {
				t.Fatalf("status changed by unauthorized caller")
			}
		})
	}
}

func TestRemoveFriendRequest(t *testing.T) {
	svc, repo := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusAccepted},
	)

	if err := svc.RemoveFriendRequest("R1", "U1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(repo.requests) != 0 {
		t.Fatalf("expected row to be deleted")
	}
}

func TestRemoveFriendRequestOnlyParticipants(t *testing.T) {
	svc, repo := newFriendServiceForTest(
		&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusPending},
	)

	if err := svc.RemoveFriendRequest("R1", "U3"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("row deleted by non-participant")
	}
}

func TestRemoveFriendRequestMissing(t *testing.T) {
	svc, _ := newFriendServiceForTest()

	if err := svc.RemoveFriendRequest("nope", "U1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
