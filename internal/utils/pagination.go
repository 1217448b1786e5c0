package utils

import (
	"strconv"

	"github.com/fieldops/duty-assignment-api/internal/constants"
	"github.com/gin-gonic/gin"
)

// PageRequest is the clamped page window for a list call.
type PageRequest struct {
	Page     int
	PageSize int
}

// ParsePageRequest reads page/limit from the query string and clamps them to
// the configured bounds. Malformed or out-of-range values fall back to the
// defaults rather than failing the request.
func ParsePageRequest(c *gin.Context) PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(c.Query("limit"))
	if err != nil || size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return PageRequest{Page: page, PageSize: size}
}
