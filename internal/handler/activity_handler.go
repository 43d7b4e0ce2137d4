package handler

import (
	"net/http"
	"strconv"
	"strings"

	"campusmatch/backend/internal/database"
	"campusmatch/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type ActivityInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	TagIDs      []uint `json:"tag_ids"` // IDs of the tags to associate with the activity
}

// PreferenceInput defines the structure for a user's activity preference.
type PreferenceInput struct {
	SkillLevel   string `json:"skill_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	HasEquipment bool   `json:"has_equipment"`
	HasTransport bool   `json:"has_transport"`
}

type ActivityResponse struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsInterest  bool          `json:"is_interest"`
	Tags        []TagResponse `json:"tags"`
}

func newActivityResponse(activity models.Activity, interestIDs map[uint]bool) ActivityResponse {
	var tagResponses []TagResponse
	for _, tag := range activity.Tags {
		if tag != nil {
			tagResponses = append(tagResponses, newTagResponse(*tag))
		}
	}

	_, isInterest := interestIDs[activity.ID]

	return ActivityResponse{
		ID:          activity.ID,
		Name:        activity.Name,
		Description: activity.Description,
		IsInterest:  isInterest,
		Tags:        tagResponses,
	}
}

// PaginatedActivityResponse defines the structure for a paginated list of activities.
type PaginatedActivityResponse struct {
	Data []ActivityResponse `json:"data"`
	Meta PaginationMeta     `json:"meta"`
}

// endregion

// region --- Admin Handlers ---

// CreateActivity godoc
// @Summary      Create a new activity
// @Description  Creates a new activity and associates it with given tags.
// @Tags         admin-activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ActivityInput true "Activity Info"
// @Success      201  {object}  ActivityResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/activities [post]
func CreateActivity(c *gin.Context) {
	var input ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find tags by IDs
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	activity := models.Activity{
		Name:        input.Name,
		Description: input.Description,
		Tags:        tags,
	}

	if err := database.DB.Create(&activity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create activity"})
		return
	}

	c.JSON(http.StatusCreated, newActivityResponse(activity, nil)) // No interest context on create
}

// UpdateActivity godoc
// @Summary      Update an activity
// @Description  Updates an activity's details and replaces its tags.
// @Tags         admin-activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Activity ID"
// @Param        input body      ActivityInput true  "New Activity Info"
// @Success      200   {object}  ActivityResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Activity not found"
// @Router       /admin/activities/{id} [put]
func UpdateActivity(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var activity models.Activity
	if err := database.DB.First(&activity, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
		return
	}

	var input ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find new tags
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	// Update activity fields
	activity.Name = input.Name
	activity.Description = input.Description

	// Replace association
	if err := database.DB.Model(&activity).Association("Tags").Replace(tags); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tags for activity"})
		return
	}

	// Save the updated activity model itself
	database.DB.Save(&activity)

	// Preload tags for the response
	database.DB.Preload("Tags").First(&activity, id)

	c.JSON(http.StatusOK, newActivityResponse(activity, nil)) // No interest context on update
}

// DeleteActivity godoc
// @Summary      Delete an activity
// @Description  Deletes an existing activity.
// @Tags         admin-activities
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Activity ID"
// @Success      200 {object} map[string]string "{"message": "Activity deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Activity not found"
// @Router       /admin/activities/{id} [delete]
func DeleteActivity(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Select("Tags").Delete(&models.Activity{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted"})
}

// endregion

// region --- Public Handlers ---

// SetActivityPreference godoc
// @Summary      Set a preference for an activity
// @Description  Creates or updates the user's preference (skill, equipment, transport) for an activity, marking it as an interest.
// @Tags         activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int             true "Activity ID"
// @Param        input body PreferenceInput true "Preference Info"
// @Success      200 {object} map[string]bool "{"is_interest": true}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Activity not found"
// @Failure      500 {object} ErrorResponse "Failed to save preference"
// @Router       /activities/{id}/preference [put]
func SetActivityPreference(c *gin.Context) {
	userID, _ := c.Get("userID")
	activityID, _ := strconv.Atoi(c.Param("id"))

	var activity models.Activity
	if err := database.DB.First(&activity, activityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
		return
	}

	var input PreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preference := models.ActivityPreference{
		UserID:       userID.(uint),
		ActivityID:   uint(activityID),
		SkillLevel:   models.SkillLevel(input.SkillLevel),
		HasEquipment: input.HasEquipment,
		HasTransport: input.HasTransport,
	}

	if err := database.DB.Save(&preference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_interest": true})
}

// RemoveActivityPreference godoc
// @Summary      Remove a preference for an activity
// @Description  Deletes the user's preference for an activity, removing it from their interests.
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Activity ID"
// @Success      200 {object} map[string]bool "{"is_interest": false}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Preference not found"
// @Router       /activities/{id}/preference [delete]
func RemoveActivityPreference(c *gin.Context) {
	userID, _ := c.Get("userID")
	activityID, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Delete(&models.ActivityPreference{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove preference"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preference not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_interest": false})
}

// GetActivityByID godoc
// @Summary      Get a single activity by ID
// @Description  Retrieves details for a single activity, including its tags and interest status.
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Activity ID"
// @Success      200 {object} ActivityResponse
// @Failure      404 {object} ErrorResponse "Activity not found"
// @Router       /activities/{id} [get]
func GetActivityByID(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var activity models.Activity
	if err := database.DB.Preload("Tags").First(&activity, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
		return
	}

	// Check if this activity is an interest of the current user
	interestIDs := make(map[uint]bool)
	var preference models.ActivityPreference
	if err := database.DB.Where("user_id = ? AND activity_id = ?", userID, id).First(&preference).Error; err == nil {
		interestIDs[uint(id)] = true
	}

	c.JSON(http.StatusOK, newActivityResponse(activity, interestIDs))
}

// GetActivities godoc
// @Summary      Get a list of activities
// @Description  Retrieves a paginated list of activities, with optional filtering by name, tags, and interests.
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Search query for activity name"
// @Param        tag_ids query     string  false  "Comma-separated list of Tag IDs"
// @Param        interests_only query bool false "Return only the user's interests"
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedActivityResponse
// @Router       /activities [get]
func GetActivities(c *gin.Context) {
	userID, _ := c.Get("userID")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset := (page - 1) * limit
	searchQuery := c.Query("q")
	tagIDsStr := c.Query("tag_ids")
	interestsOnly, _ := strconv.ParseBool(c.Query("interests_only"))

	// Get the user's interest IDs first for efficient checking
	var preferences []models.ActivityPreference
	database.DB.Where("user_id = ?", userID).Find(&preferences)
	interestIDs := make(map[uint]bool)
	var interestActivityIDs []uint
	for _, preference := range preferences {
		interestIDs[preference.ActivityID] = true
		interestActivityIDs = append(interestActivityIDs, preference.ActivityID)
	}

	dbQuery := database.DB.Model(&models.Activity{})

	// Filter by interests only
	if interestsOnly {
		if len(interestActivityIDs) == 0 { // If no interests, return empty paginated response
			c.JSON(http.StatusOK, NewPaginatedResponse([]ActivityResponse{}, 0, page, limit))
			return
		}
		dbQuery = dbQuery.Where("id IN (?)", interestActivityIDs)
	}

	// Filter by name
	if searchQuery != "" {
		dbQuery = dbQuery.Where("name LIKE ?", "%"+searchQuery+"%")
	}

	// Filter by tags
	var tagIDs []uint
	if tagIDsStr != "" {
		for _, s := range splitCommaSeparated(tagIDsStr) {
			if id, parseErr := strconv.ParseUint(s, 10, 32); parseErr == nil {
				tagIDs = append(tagIDs, uint(id))
			}
		}
	}

	if len(tagIDs) > 0 {
		dbQuery = dbQuery.Joins("JOIN activity_tags at ON at.activity_id = activities.id").
			Where("at.tag_id IN (?)", tagIDs).
			Group("activities.id")
	}

	// --- Count total items ---
	// A separate query is needed for counting when using GROUP BY
	// to avoid GORM's default behavior which can be incorrect.
	var totalItems int64
	countQuery := database.DB.Model(&models.Activity{})
	if interestsOnly {
		countQuery = countQuery.Where("id IN (?)", interestActivityIDs)
	}
	if searchQuery != "" {
		countQuery = countQuery.Where("name LIKE ?", "%"+searchQuery+"%")
	}
	if len(tagIDs) > 0 {
		// For a grouped query, count the number of distinct groups
		// through a subquery.
		subQuery := countQuery.Joins("JOIN activity_tags at ON at.activity_id = activities.id").
			Where("at.tag_id IN (?)", tagIDs).
			Group("activities.id").Select("activities.id")

		if err := database.DB.Table("(?) as sub", subQuery).Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activities"})
			return
		}
	} else {
		if err := countQuery.Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activities"})
			return
		}
	}

	var activities []models.Activity
	err = dbQuery.Preload("Tags").Order("name ASC").Offset(offset).Limit(limit).Find(&activities).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	response := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		response = append(response, newActivityResponse(activity, interestIDs))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	parts := strings.Split(s, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// endregion
