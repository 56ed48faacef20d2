package service

import (
	"fmt"
	"log"

	"beanleaf/internal/errs"
	"beanleaf/internal/model"
	"beanleaf/internal/repository"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImageFromMemory(fileData []byte, filename string) (string, error)
}

// CreateLocationInput carries a new review pin.
type CreateLocationInput struct {
	LocationName string  `json:"location_name" binding:"required"`
	Description  string  `json:"description"`
	DrinkType    string  `json:"drink_type"`
	Rating       float64 `json:"rating" binding:"required"`
	Latitude     float64 `json:"location_latitude"`
	Longitude    float64 `json:"location_longitude"`

	// Optional photo; uploaded when an uploader is configured.
	ImageData     []byte `json:"-"`
	ImageFilename string `json:"-"`
}

// FriendFavorites is the aggregation of all friends' saved locations.
// Per-friend fetch failures are skipped and counted rather than
// aborting the whole aggregation.
type FriendFavorites struct {
	Locations     []model.SavedLocation `json:"locations"`
	FailedLookups int                   `json:"failed_lookups"`
}

type LocationService interface {
	CreateLocation(userID string, input CreateLocationInput) (*model.SavedLocation, error)
	MyLocations(userID string) ([]model.SavedLocation, error)
	Explore(limit, offset int) ([]model.SavedLocation, error)
	DeleteLocation(locationID, userID string) error
	FavoritesOfFriends(userID string) (*FriendFavorites, error)
}

type locationService struct {
	locationRepo repository.LocationRepository
	friendRepo   repository.FriendRequestRepository
	uploader     ImageUploader
}

func NewLocationService(
	locationRepo repository.LocationRepository,
	friendRepo repository.FriendRequestRepository,
	uploader ImageUploader,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		friendRepo:   friendRepo,
		uploader:     uploader,
	}
}

// CreateLocation validates and persists a new review pin, uploading the
// photo first when one is attached.
func (s *locationService) CreateLocation(userID string, input CreateLocationInput) (*model.SavedLocation, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if input.LocationName == "" {
		return nil, errs.NewValidation("location_name is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errs.NewValidation("rating must be between 1 and 5")
	}

	location := &model.SavedLocation{
		UserID:       userID,
		LocationName: input.LocationName,
		Description:  input.Description,
		DrinkType:    input.DrinkType,
		Rating:       input.Rating,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}

	if len(input.ImageData) > 0 {
		if s.uploader == nil {
			return nil, errs.NewValidation("image uploads are not configured")
		}
		url, err := s.uploader.UploadImageFromMemory(input.ImageData, input.ImageFilename)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		location.ImageURL = &url
	}

	if err := s.locationRepo.Create(location); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	return location, nil
}

// MyLocations returns the caller's own pins.
func (s *locationService) MyLocations(userID string) ([]model.SavedLocation, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	locations, err := s.locationRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	if locations == nil {
		locations = []model.SavedLocation{}
	}
	return locations, nil
}

// Explore returns every pin, newest first.
func (s *locationService) Explore(limit, offset int) ([]model.SavedLocation, error) {
	locations, err := s.locationRepo.FindAll(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	if locations == nil {
		locations = []model.SavedLocation{}
	}
	return locations, nil
}

// DeleteLocation deletes a pin bound to its owner. A delete that matches
// zero rows (wrong id or not the owner) reports not-found instead of
// silently succeeding.
func (s *locationService) DeleteLocation(locationID, userID string) error {
	if userID == "" {
		return errs.ErrNotAuthenticated
	}

	affected, err := s.locationRepo.DeleteByIDAndUserID(locationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FavoritesOfFriends concatenates the pins of every accepted friend,
// annotating each with the friend's email from the already-expanded
// profile on the friendship row. One failed friend lookup does not
// abort the rest.
func (s *locationService) FavoritesOfFriends(userID string) (*FriendFavorites, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	friendships, err := s.friendRepo.FindAcceptedByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}

	favorites := &FriendFavorites{Locations: []model.SavedLocation{}}
	for _, friendship := range friendships {
		friendID := friendship.CounterpartID(userID)

		friendEmail := friendship.Sender.Email
		if friendship.FromUserID == userID {
			friendEmail = friendship.Receiver.Email
		}

		locations, err := s.locationRepo.FindByUserID(friendID)
		if err != nil {
			log.Printf("Skipping locations for friend %s: %v", friendID, err)
			favorites.FailedLookups++
			continue
		}

		for _, location := range locations {
			location.UserEmail = friendEmail
			favorites.Locations = append(favorites.Locations, location)
		}
	}

	return favorites, nil
}
