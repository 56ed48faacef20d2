package app

import (
	"errors"
	"net/http"

	"beanleaf/internal/errs"
	"beanleaf/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps service-layer errors onto HTTP statuses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotAuthenticated):
		util.Unauthorized(c, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		util.Forbidden(c, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, errs.ErrAlreadyRequested),
		errors.Is(err, errs.ErrAlreadyFriends),
		errors.Is(err, errs.ErrSelfRequest),
		errs.IsValidation(err):
		util.BadRequest(c, err.Error())
	default:
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
