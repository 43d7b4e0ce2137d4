package handler

import (
	"net/http"
	"strconv"

	"campusmatch/backend/internal/matcher"

	"github.com/gin-gonic/gin"
)

// GetCandidates godoc
// @Summary      Find candidates for a new request
// @Description  Returns a deterministic, paginated list of users eligible for a new connection or ping from the authenticated user. Users with a pending, accepted or blocked connection are excluded; declined users reappear.
// @Tags         candidates
// @Produce      json
// @Security     BearerAuth
// @Param        activity_id query int    false "Restrict to users interested in this activity (or open to all)"
// @Param        university  query string false "Filter by university"
// @Param        major       query string false "Filter by major"
// @Param        heritage    query []string false "Filter by heritage overlap" collectionFormat(multi)
// @Param        sort_by     query string false "Sort key (name, university, class_year)" default(name)
// @Param        sort_order  query string false "Sort order (asc, desc)" default(asc)
// @Param        page        query int    false "Page number" default(1)
// @Param        limit       query int    false "Items per page" default(10)
// @Success      200 {object} matcher.Page
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /candidates [get]
func GetCandidates(c *gin.Context) {
	requesterID, _ := c.Get("userID")

	filters := matcher.Filters{
		University: c.Query("university"),
		Major:      c.Query("major"),
		Heritage:   c.QueryArray("heritage"),
		SortBy:     c.DefaultQuery("sort_by", "name"),
		SortOrder:  c.DefaultQuery("sort_order", "asc"),
	}

	if raw := c.Query("activity_id"); raw != "" {
		activityID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity ID"})
			return
		}
		id := uint(activityID)
		filters.ActivityID = &id
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	result, err := matcherService.FindCandidates(requesterID.(uint), filters, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find candidates"})
		return
	}

	c.JSON(http.StatusOK, result)
}
