package v1

import (
	"errors"
	"net/http"

	"github.com/dan-homisak/Nexus/internal/httperror"
	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/gin-gonic/gin"
)

// status maps a domain error to the HTTP status of its response.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrAppendOnlyViolation),
		errors.Is(err, models.ErrHasChildren),
		errors.Is(err, models.ErrAllocationsPresent),
		errors.Is(err, models.ErrCategoriesPresent),
		errors.Is(err, models.ErrCategoryNameNotUnique):
		return http.StatusConflict

	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError

	default:
		return http.StatusBadRequest
	}
}

// code returns the stable error code for the response body.
func code(err error) string {
	switch {
	case errors.Is(err, httputil.ErrInvalidBody), errors.Is(err, httputil.ErrRequestBodyEmpty):
		return "invalid_body"
	case errors.Is(err, httputil.ErrInvalidUUID):
		return "invalid_uuid"
	}

	return models.Code(err)
}

func httpError(c *gin.Context, err error) {
	c.JSON(status(err), httperror.New(code(err), err))
}
