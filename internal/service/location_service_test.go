package service

import (
	"errors"
	"fmt"
	"testing"

	"beanleaf/internal/errs"
	"beanleaf/internal/model"
)

type inMemoryLocationRepo struct {
	locations map[string]model.SavedLocation
	// per-user errors injected into FindByUserID
	lookupErr map[string]error
	nextID    int
}

func newInMemoryLocationRepo() *inMemoryLocationRepo {
	return &inMemoryLocationRepo{
		locations: make(map[string]model.SavedLocation),
		lookupErr: make(map[string]error),
	}
}

func (r *inMemoryLocationRepo) Create(location *model.SavedLocation) error {
	if location.ID == "" {
		r.nextID++
		location.ID = fmt.Sprintf("loc-%d", r.nextID)
	}
	r.locations[location.ID] = *location
	return nil
}

func (r *inMemoryLocationRepo) FindByUserID(userID string) ([]model.SavedLocation, error) {
	if err := r.lookupErr[userID]; err != nil {
		return nil, err
	}
	var out []model.SavedLocation
	for _, location := range r.locations {
		if location.UserID == userID {
			out = append(out, location)
		}
	}
	return out, nil
}

func (r *inMemoryLocationRepo) FindAll(limit, offset int) ([]model.SavedLocation, error) {
	var out []model.SavedLocation
	for _, location := range r.locations {
		out = append(out, location)
	}
	return out, nil
}

func (r *inMemoryLocationRepo) DeleteByIDAndUserID(id, userID string) (int64, error) {
	location, ok := r.locations[id]
	if !ok || location.UserID != userID {
		return 0, nil
	}
	delete(r.locations, id)
	return 1, nil
}

type stubUploader struct {
	url string
	err error
}

func (u *stubUploader) UploadImageFromMemory([]byte, string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

func validInput() CreateLocationInput {
	return CreateLocationInput{
		LocationName: "Corner Roasters",
		Description:  "great flat white",
		DrinkType:    "coffee",
		Rating:       4,
		Latitude:     52.52,
		Longitude:    13.405,
	}
}

func TestCreateLocation(t *testing.T) {
	repo := newInMemoryLocationRepo()
	svc := NewLocationService(repo, newInMemoryFriendRepo(), nil)

	location, err := svc.CreateLocation("U1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if location.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if location.UserID != "U1" {
		t.Fatalf("expected owner U1, got %q", location.UserID)
	}
	if location.ImageURL != nil {
		t.Fatalf("expected no image url")
	}
}

func TestCreateLocationValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateLocationInput)
	}{
		{name: "missing name", mutate: func(in *CreateLocationInput) { in.LocationName = "" }},
		{name: "rating too low", mutate: func(in *CreateLocationInput) { in.Rating = 0 }},
		{name: "rating too high", mutate: func(in *CreateLocationInput) { in.Rating = 6 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newInMemoryLocationRepo()
			svc := NewLocationService(repo, newInMemoryFriendRepo(), nil)

			input := validInput()
			tc.mutate(&input)

			if _, err := svc.CreateLocation("U1", input); !errs.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(repo.locations) != 0 {
				t.Fatalf("invalid input was persisted")
			}
		})
	}
}

func TestCreateLocationWithImage(t *testing.T) {
	repo := newInMemoryLocationRepo()
	uploader := &stubUploader{url: "https://cdn.example/cup.webp"}
	svc := NewLocationService(repo, newInMemoryFriendRepo(), uploader)

	input := validInput()
	input.ImageData = []byte{0xff, 0xd8}
	input.ImageFilename = "cup.jpg"

	location, err := svc.CreateLocation("U1", input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if location.ImageURL == nil || *location.ImageURL != uploader.url {
		t.Fatalf("expected uploaded url on the row, got %v", location.ImageURL)
	}
}

func TestCreateLocationUploadFailure(t *testing.T) {
	repo := newInMemoryLocationRepo()
	uploader := &stubUploader{err: errors.New("upload down")}
	svc := NewLocationService(repo, newInMemoryFriendRepo(), uploader)

	input := validInput()
	input.ImageData = []byte{0xff, 0xd8}
	input.ImageFilename = "cup.jpg"

	if _, err := svc.CreateLocation("U1", input); err == nil {
		t.Fatalf("expected error when upload fails")
	}
	if len(repo.locations) != 0 {
		t.Fatalf("row persisted despite failed upload")
	}
}

func TestDeleteLocationNotOwned(t *testing.T) {
	repo := newInMemoryLocationRepo()
	repo.Create(&model.SavedLocation{UserID: "U2", LocationName: "Tea House", Rating: 5})
	svc := NewLocationService(repo, newInMemoryFriendRepo(), nil)

	err := svc.DeleteLocation("loc-1", "U1")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(repo.locations) != 1 {
		t.Fatalf("row deleted by non-owner")
	}
}

func TestDeleteLocationOwned(t *testing.T) {
	repo := newInMemoryLocationRepo()
	repo.Create(&model.SavedLocation{UserID: "U1", LocationName: "Tea House", Rating: 5})
	svc := NewLocationService(repo, newInMemoryFriendRepo(), nil)

	if err := svc.DeleteLocation("loc-1", "U1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.locations) != 0 {
		t.Fatalf("expected row to be gone")
	}
}

func TestFavoritesOfFriends(t *testing.T) {
	friendRepo := newInMemoryFriendRepo(alice, bob)
	friendRepo.Create(&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusAccepted})

	locationRepo := newInMemoryLocationRepo()
	locationRepo.Create(&model.SavedLocation{UserID: "U2", LocationName: "Tea House", Rating: 5})
	locationRepo.Create(&model.SavedLocation{UserID: "U2", LocationName: "Espresso Bar", Rating: 4})
	// Not a friend's location; must not appear
	locationRepo.Create(&model.SavedLocation{UserID: "U3", LocationName: "Juice Stand", Rating: 3})

	svc := NewLocationService(locationRepo, friendRepo, nil)

	favorites, err := svc.FavoritesOfFriends("U1")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}

	if len(favorites.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(favorites.Locations))
	}
	for _, location := range favorites.Locations {
		if location.UserID != "U2" {
			t.Fatalf("unexpected owner %q in favorites", location.UserID)
		}
		if location.UserEmail != "bob@x.com" {
			t.Fatalf("expected user_email annotation, got %q", location.UserEmail)
		}
	}
	if favorites.FailedLookups != 0 {
		t.Fatalf("expected no failed lookups, got %d", favorites.FailedLookups)
	}
}

func TestFavoritesOfFriendsSkipsFailedLookups(t *testing.T) {
	friendRepo := newInMemoryFriendRepo(alice, bob, carol)
	friendRepo.Create(&model.FriendRequest{ID: "R1", FromUserID: "U1", ToUserID: "U2", Status: model.FriendRequestStatusAccepted})
	friendRepo.Create(&model.FriendRequest{ID: "R2", FromUserID: "U3", ToUserID: "U1", Status: model.FriendRequestStatusAccepted})

	locationRepo := newInMemoryLocationRepo()
	locationRepo.Create(&model.SavedLocation{UserID: "U2", LocationName: "Tea House", Rating: 5})
	locationRepo.lookupErr["U3"] = errors.New("store unavailable")

	svc := NewLocationService(locationRepo, friendRepo, nil)

	favorites, err := svc.FavoritesOfFriends("U1")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}

	if len(favorites.Locations) != 1 {
		t.Fatalf("expected the healthy friend's location, got %d rows", len(favorites.Locations))
	}
	if favorites.FailedLookups != 1 {
		t.Fatalf("expected 1 failed lookup, got %d", favorites.FailedLookups)
	}
}

func TestMyLocationsRequiresPrincipal(t *testing.T) {
	svc := NewLocationService(newInMemoryLocationRepo(), newInMemoryFriendRepo(), nil)

	if _, err := svc.MyLocations(""); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
