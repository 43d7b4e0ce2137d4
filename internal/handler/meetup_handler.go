package handler

import (
	"net/http"
	"strconv"

	"campusmatch/backend/internal/database"
	"campusmatch/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type MeetupInput struct {
	ActivityID  uint   `json:"activity_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members" binding:"required,min=2,max=20"`
}

type MeetupResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	MaxMembers  int                  `json:"max_members"`
	Activity    ActivityResponse     `json:"activity"`
	Host        PublicUserResponse   `json:"host"`
	Members     []PublicUserResponse `json:"members"`
}

func newMeetupResponse(meetup models.Meetup) MeetupResponse {
	var memberResponses []PublicUserResponse
	for _, member := range meetup.Members {
		// Pass 0 as viewerID since we don't have that context here
		memberResponses = append(memberResponses, buildPublicUserResponse(member, 0))
	}

	hostResponse := buildPublicUserResponse(meetup.Host, 0)
	activityResponse := newActivityResponse(meetup.Activity, nil)

	return MeetupResponse{
		ID:          meetup.ID,
		Title:       meetup.Title,
		Description: meetup.Description,
		MaxMembers:  meetup.MaxMembers,
		Activity:    activityResponse,
		Host:        hostResponse,
		Members:     memberResponses,
	}
}

// endregion

// CreateMeetup godoc
// @Summary      Create a new meetup
// @Description  Creates a new meetup around an activity, making the creator the host.
// @Tags         meetups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body MeetupInput true "Meetup Info"
// @Success      201  {object}  MeetupResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "User is already in a meetup"
// @Router       /meetups [post]
func CreateMeetup(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.CurrentMeetupID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already in a meetup"})
		return
	}

	var input MeetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meetup := models.Meetup{
		ActivityID:  input.ActivityID,
		HostID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		MaxMembers:  input.MaxMembers,
	}

	// Use a transaction to ensure both meetup creation and user update succeed
	tx := database.DB.Begin()

	if err := tx.Create(&meetup).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meetup"})
		return
	}

	user.CurrentMeetupID = &meetup.ID
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user's meetup"})
		return
	}

	tx.Commit()

	// Reload meetup with all associations
	database.DB.Preload("Activity").Preload("Host").Preload("Members").First(&meetup, meetup.ID)

	c.JSON(http.StatusCreated, newMeetupResponse(meetup))
}

// SearchMeetups godoc
// @Summary      Search for meetups
// @Description  Gets a paginated list of meetups with open spots, optionally filtered by activity.
// @Tags         meetups
// @Produce      json
// @Security     BearerAuth
// @Param        activity_id query int false "Filter by Activity ID"
// @Param        page        query int false "Page number" default(1)
// @Param        limit       query int false "Items per page" default(10)
// @Success      200 {array} MeetupResponse
// @Router       /meetups [get]
func SearchMeetups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset := (page - 1) * limit
	activityID := c.Query("activity_id")

	var meetups []models.Meetup
	query := database.DB.Model(&models.Meetup{}).
		Preload("Activity").
		Preload("Host").
		Preload("Members").
		Joins("LEFT JOIN users ON users.current_meetup_id = meetups.id").
		Group("meetups.id").
		Having("COUNT(users.id) < meetups.max_members") // Filter out full meetups

	if activityID != "" {
		query = query.Where("meetups.activity_id = ?", activityID)
	}

	query.Offset(offset).Limit(limit).Find(&meetups)

	var response []MeetupResponse
	for _, meetup := range meetups {
		response = append(response, newMeetupResponse(meetup))
	}

	c.JSON(http.StatusOK, response)
}

// GetMeetupByID godoc
// @Summary      Get a meetup by ID
// @Description  Gets full details for a single meetup.
// @Tags         meetups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meetup ID"
// @Success      200 {object} MeetupResponse
// @Failure      404 {object} ErrorResponse "Meetup not found"
// @Router       /meetups/{id} [get]
func GetMeetupByID(c *gin.Context) {
	meetupID, _ := strconv.Atoi(c.Param("id"))

	var meetup models.Meetup
	if err := database.DB.Preload("Activity").Preload("Host").Preload("Members").First(&meetup, meetupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meetup not found"})
		return
	}

	c.JSON(http.StatusOK, newMeetupResponse(meetup))
}

// JoinMeetup godoc
// @Summary      Join a meetup
// @Description  Joins a meetup if not full and the user is not already in another meetup.
// @Tags         meetups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meetup ID"
// @Success      200 {object} map[string]string "{"message": "Joined meetup successfully"}"
// @Failure      404 {object} ErrorResponse "Meetup not found"
// @Failure      409 {object} ErrorResponse "Meetup is full or user is in another meetup"
// @Router       /meetups/{id}/join [post]
func JoinMeetup(c *gin.Context) {
	userID, _ := c.Get("userID")
	meetupID, _ := strconv.Atoi(c.Param("id"))

	// Check user isn't already in a meetup
	var user models.User
	database.DB.First(&user, userID)
	if user.CurrentMeetupID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already in a meetup"})
		return
	}

	// Check meetup exists and is not full
	var meetup models.Meetup
	if err := database.DB.Preload("Members").First(&meetup, meetupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meetup not found"})
		return
	}
	if len(meetup.Members) >= meetup.MaxMembers {
		c.JSON(http.StatusConflict, gin.H{"error": "Meetup is full"})
		return
	}

	// Join meetup
	meetupIDUint := uint(meetupID)
	database.DB.Model(&user).Update("current_meetup_id", &meetupIDUint)

	c.JSON(http.StatusOK, gin.H{"message": "Joined meetup successfully"})
}

// LeaveMeetup godoc
// @Summary      Leave the current meetup
// @Description  Leaves the meetup the user is currently in. Handles host migration and meetup deletion.
// @Tags         meetups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string "{"message": "Left meetup successfully"}"
// @Failure      404 {object} ErrorResponse "User is not in a meetup"
// @Router       /meetups/leave [post]
func LeaveMeetup(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.Preload("CurrentMeetup.Members").First(&user, userID).Error; err != nil || user.CurrentMeetupID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User is not in a meetup"})
		return
	}

	meetup := user.CurrentMeetup

	// Use transaction for leaving logic
	tx := database.DB.Begin()

	// User leaves the meetup
	if err := tx.Model(&user).Update("current_meetup_id", nil).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave meetup"})
		return
	}

	// If the user was the last one, delete the meetup
	if len(meetup.Members) == 1 && meetup.Members[0].ID == user.ID {
		if err := tx.Delete(&meetup).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete empty meetup"})
			return
		}
	} else if meetup.HostID == user.ID { // If the user was the host, promote the next member
		var nextHost models.User
		for _, member := range meetup.Members {
			if member.ID != user.ID {
				nextHost = member
				break
			}
		}
		if nextHost.ID != 0 {
			if err := tx.Model(&meetup).Update("host_id", nextHost.ID).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer host"})
				return
			}
		}
	}

	tx.Commit()
	c.JSON(http.StatusOK, gin.H{"message": "Left meetup successfully"})
}

// UpdateMeetup godoc
// @Summary      Update a meetup (Host only)
// @Description  Updates the details of a meetup. Only the host can perform this action.
// @Tags         meetups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Meetup ID"
// @Param        input body      MeetupInput true  "New Meetup Info"
// @Success      200   {object}  MeetupResponse
// @Failure      403   {object}  ErrorResponse "Only the host can update the meetup"
// @Failure      404   {object}  ErrorResponse "Meetup not found"
// @Router       /meetups/{id} [put]
func UpdateMeetup(c *gin.Context) {
	userID, _ := c.Get("userID")
	meetupID, _ := strconv.Atoi(c.Param("id"))

	var meetup models.Meetup
	if err := database.DB.First(&meetup, meetupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meetup not found"})
		return
	}

	if meetup.HostID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the host can update the meetup"})
		return
	}

	var input MeetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meetup.Title = input.Title
	meetup.Description = input.Description
	meetup.MaxMembers = input.MaxMembers
	meetup.ActivityID = input.ActivityID

	database.DB.Save(&meetup)

	database.DB.Preload("Activity").Preload("Host").Preload("Members").First(&meetup, meetup.ID)
	c.JSON(http.StatusOK, newMeetupResponse(meetup))
}

// KickMember godoc
// @Summary      Kick a member from a meetup (Host only)
// @Description  Removes a member from the meetup. Only the host can perform this action.
// @Tags         meetups
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int true "Meetup ID"
// @Param        userID  path int true "User ID of member to kick"
// @Success      200 {object} map[string]string "{"message": "Member kicked successfully"}"
// @Failure      403 {object} ErrorResponse "Only the host can kick members"
// @Failure      404 {object} ErrorResponse "Meetup or member not found"
// @Router       /meetups/{id}/members/{userID} [delete]
func KickMember(c *gin.Context) {
	hostID, _ := c.Get("userID")
	meetupID, _ := strconv.Atoi(c.Param("id"))
	memberToKickID, _ := strconv.Atoi(c.Param("userID"))

	var meetup models.Meetup
	if err := database.DB.First(&meetup, meetupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meetup not found"})
		return
	}

	if meetup.HostID != hostID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the host can kick members"})
		return
	}

	if meetup.HostID == uint(memberToKickID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Host cannot kick themselves"})
		return
	}

	var memberToKick models.User
	if err := database.DB.Where("id = ? AND current_meetup_id = ?", memberToKickID, meetupID).First(&memberToKick).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found in this meetup"})
		return
	}

	database.DB.Model(&memberToKick).Update("current_meetup_id", nil)
	c.JSON(http.StatusOK, gin.H{"message": "Member kicked successfully"})
}
