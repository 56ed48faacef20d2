package app

import (
	"net/http"

	"beanleaf/internal/service"
	"beanleaf/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	friendService service.FriendService
}

func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// GetFriendState returns pending incoming requests and accepted friends
// GET /api/v1/friends
func (h *FriendHandler) GetFriendState(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	state, err := h.friendService.ResolveFriendState(userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend state retrieved successfully", state)
}

// SearchCandidates searches profiles by email fragment
// GET /api/v1/friends/search?q=fragment
func (h *FriendHandler) SearchCandidates(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	fragment := c.Query("q")

	candidates, err := h.friendService.SearchCandidates(userID.(string), fragment)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Candidates retrieved successfully", gin.H{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// SendFriendRequest creates a pending request
// POST /api/v1/friends/requests
func (h *FriendHandler) SendFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	request, err := h.friendService.SendFriendRequest(userID.(string), req.ToUserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Friend request sent successfully", gin.H{"request": request})
}

// AcceptFriendRequest flips a pending request to accepted
// POST /api/v1/friends/requests/:id/accept
func (h *FriendHandler) AcceptFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	requestID := c.Param("id")
	if requestID == "" {
		util.BadRequest(c, "Request ID is required")
		return
	}

	request, err := h.friendService.AcceptFriendRequest(requestID, userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request accepted successfully", gin.H{"request": request})
}

// RemoveFriendRequest deletes a request or friendship row
// DELETE /api/v1/friends/requests/:id
func (h *FriendHandler) RemoveFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	requestID := c.Param("id")
	if requestID == "" {
		util.BadRequest(c, "Request ID is required")
		return
	}

	if err := h.friendService.RemoveFriendRequest(requestID, userID.(string)); err != nil {
		handleServiceError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request removed successfully", nil)
}
