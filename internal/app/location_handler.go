package app

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"beanleaf/internal/service"
	"beanleaf/internal/util"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20 // 10 MB

type LocationHandler struct {
	locationService service.LocationService
}

func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// CreateLocation saves a new review pin; accepts JSON or multipart with
// an optional image file.
// POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var input service.CreateLocationInput

	contentType := c.ContentType()
	if contentType == "multipart/form-data" {
		if err := h.bindMultipart(c, &input); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	}

	location, err := h.locationService.CreateLocation(userID.(string), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Location saved successfully", gin.H{"location": location})
}

func (h *LocationHandler) bindMultipart(c *gin.Context, input *service.CreateLocationInput) error {
	input.LocationName = c.PostForm("location_name")
	input.Description = c.PostForm("description")
	input.DrinkType = c.PostForm("drink_type")
	input.Rating, _ = strconv.ParseFloat(c.PostForm("rating"), 64)
	input.Latitude, _ = strconv.ParseFloat(c.PostForm("location_latitude"), 64)
	input.Longitude, _ = strconv.ParseFloat(c.PostForm("location_longitude"), 64)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// image is optional
		return nil
	}
	if fileHeader.Size > maxImageSize {
		return errors.New("image exceeds the 10 MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		return err
	}

	input.ImageData = data
	input.ImageFilename = fileHeader.Filename
	return nil
}

// GetMyLocations returns the caller's pins
// GET /api/v1/locations
func (h *LocationHandler) GetMyLocations(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	locations, err := h.locationService.MyLocations(userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Locations retrieved successfully", gin.H{"locations": locations})
}

// Explore returns all pins, newest first
// GET /api/v1/locations/explore?limit=50&offset=0
func (h *LocationHandler) Explore(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	locations, err := h.locationService.Explore(limit, offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Locations retrieved successfully", gin.H{
		"locations": locations,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetFriendFavorites returns all accepted friends' pins annotated with
// the friend's email.
// GET /api/v1/locations/friends
func (h *LocationHandler) GetFriendFavorites(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	favorites, err := h.locationService.FavoritesOfFriends(userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend favorites retrieved successfully", favorites)
}

// DeleteLocation removes one of the caller's own pins
// DELETE /api/v1/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	locationID := c.Param("id")
	if locationID == "" {
		util.BadRequest(c, "Location ID is required")
		return
	}

	if err := h.locationService.DeleteLocation(locationID, userID.(string)); err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Location deleted successfully", nil)
}
