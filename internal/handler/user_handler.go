package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"campusmatch/backend/internal/database"
	"campusmatch/backend/internal/models"
	"campusmatch/backend/internal/relationship"
	"campusmatch/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname   string   `json:"nickname" binding:"required" example:"testuser"`
	Email      string   `json:"email" binding:"required,email" example:"test@example.com"`
	Password   string   `json:"password" binding:"required,min=8" example:"password123"`
	University string   `json:"university" example:"State University"`
	Major      string   `json:"major" example:"Computer Science"`
	ClassYear  int      `json:"class_year" example:"2027"`
	Heritage   []string `json:"heritage"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateProfileInput defines the structure for editing the own profile.
type UpdateProfileInput struct {
	University          string   `json:"university"`
	Major               string   `json:"major"`
	ClassYear           int      `json:"class_year"`
	Heritage            []string `json:"heritage"`
	OpenToAllActivities bool     `json:"open_to_all_activities"`
}

// PublicUserResponse defines the structure for a user's public profile,
// including the viewer's connection to them.
type PublicUserResponse struct {
	ID               uint               `json:"id" example:"1"`
	Nickname         string             `json:"nickname" example:"testuser"`
	University       string             `json:"university,omitempty"`
	Major            string             `json:"major,omitempty"`
	ClassYear        int                `json:"class_year,omitempty"`
	Heritage         []string           `json:"heritage,omitempty"`
	ConnectionsCount int64              `json:"connections_count"`
	Connection       *relationship.View `json:"connection,omitempty"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID                  uint     `json:"id" example:"1"`
	Nickname            string   `json:"nickname" example:"testuser"`
	Email               string   `json:"email" example:"test@example.com"`
	University          string   `json:"university,omitempty"`
	Major               string   `json:"major,omitempty"`
	ClassYear           int      `json:"class_year,omitempty"`
	Heritage            []string `json:"heritage,omitempty"`
	OpenToAllActivities bool     `json:"open_to_all_activities"`
	ConnectionsCount    int64    `json:"connections_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []PublicUserResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Nickname, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Nickname:     input.Nickname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		University:   input.University,
		Major:        input.Major,
		ClassYear:    input.ClassYear,
		Heritage:     input.Heritage,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with nickname/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by nickname with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for nickname"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedUserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")

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

	var users []models.User
	var totalItems int64

	query := database.DB.Model(&models.User{}).Where("id <> ?", viewerID)
	if searchQuery != "" {
		query = query.Where("nickname LIKE ?", "%"+searchQuery+"%")
	}

	// Get total count before pagination
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	// Get paginated users, ordered deterministically
	if err := query.Order("nickname ASC, id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, buildPublicUserResponse(user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, PaginatedUserResponse{
		Data: userResponses,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  (int(totalItems) + limit - 1) / limit,
			CurrentPage: page,
			PageSize:    limit,
			HasNext:     int64(offset+limit) < totalItems,
		},
	})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user by their ID, including the viewer's connection to them.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// If target is the same as viewer, redirect to /me
	if viewerID.(uint) == uint(targetUserID) {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := buildPublicUserResponse(targetUser, viewerID.(uint))
	c.JSON(http.StatusOK, response)
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := buildPrivateUserResponse(user)
	c.JSON(http.StatusOK, response)
}

// UpdateMe godoc
// @Summary      Update current user's profile
// @Description  Updates the matching-relevant profile attributes of the authenticated user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile Info"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user.University = input.University
	user.Major = input.Major
	user.ClassYear = input.ClassYear
	user.Heritage = input.Heritage
	user.OpenToAllActivities = input.OpenToAllActivities

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(targetUser models.User, viewerID uint) PublicUserResponse {
	response := PublicUserResponse{
		ID:               targetUser.ID,
		Nickname:         targetUser.Nickname,
		University:       targetUser.University,
		Major:            targetUser.Major,
		ClassYear:        targetUser.ClassYear,
		Heritage:         targetUser.Heritage,
		ConnectionsCount: countConnections(targetUser.ID),
	}

	// Attach the viewer's connection to the target, if any
	partyA, partyB := models.CanonicalPair(viewerID, targetUser.ID)
	var rel models.Relationship
	err := database.DB.
		Where("kind = ? AND party_a = ? AND party_b = ?", models.KindConnection, partyA, partyB).
		First(&rel).Error
	if err == nil {
		view := relationship.Project(rel, viewerID)
		response.Connection = &view
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to load connection for user %d: %v", targetUser.ID, err)
	}

	return response
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	return PrivateUserResponse{
		ID:                  user.ID,
		Nickname:            user.Nickname,
		Email:               user.Email,
		University:          user.University,
		Major:               user.Major,
		ClassYear:           user.ClassYear,
		Heritage:            user.Heritage,
		OpenToAllActivities: user.OpenToAllActivities,
		ConnectionsCount:    countConnections(user.ID),
	}
}

func countConnections(userID uint) int64 {
	var count int64
	database.DB.Model(&models.Relationship{}).
		Where("kind = ? AND status = ?", models.KindConnection, models.StatusAccepted).
		Where("party_a = ? OR party_b = ?", userID, userID).
		Count(&count)
	return count
}

// endregion
