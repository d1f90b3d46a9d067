package v1

import (
	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pagination is appended to all list responses.
type Pagination struct {
	Count  int   `json:"count"`  // Number of items in the response
	Offset uint  `json:"offset"` // Offset of the first item
	Limit  int   `json:"limit"`  // Requested limit
	Total  int64 `json:"total"`  // Total number of matching items
}

// defaultLimit is the list page size when the request does not set one.
const defaultLimit = 50

// getModelByID fetches a resource by its primary key.
func getModelByID[T any](id uuid.UUID) (T, error) {
	var resource T
	err := models.DB.First(&resource, "id = ?", id).Error
	return resource, err
}

// requireID reads and parses the ":id" URL parameter. On failure it writes
// the error response and returns false.
func requireID(c *gin.Context) (uuid.UUID, bool) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		httpError(c, err)
		return uuid.Nil, false
	}

	return id, true
}

// listParams are the pagination parameters common to all list endpoints.
type listParams struct {
	Offset uint `form:"offset"`
	Limit  *int `form:"limit"`
}

func (p listParams) limit() int {
	if p.Limit != nil {
		return *p.Limit
	}
	return defaultLimit
}
