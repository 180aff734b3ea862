package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Params holds the page window requested by a list endpoint.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page/limit from the query string and clamps them to sane
// bounds. Anything unparsable falls back to the defaults rather than failing
// the request.
func Parse(c *gin.Context) Params {
	page := atoiOr(c.Query("page"), defaultPage)
	limit := atoiOr(c.Query("limit"), defaultLimit)

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
