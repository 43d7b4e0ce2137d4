package main

import (
	"fmt"
	"log"
	"net/http"

	"campusmatch/backend/internal/auth"
	"campusmatch/backend/internal/config"
	"campusmatch/backend/internal/database"
	"campusmatch/backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "campusmatch/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           CampusMatch API
// @version         1.0
// @description     This is the API for the CampusMatch service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Wire up services against the live database
	handler.Init(database.DB)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateMe)
			userRoutes.GET("/me/relationships", handler.GetMyRelationships)
			userRoutes.GET("/:id", handler.GetUserByID)
		}

		// Relationship routes (protected)
		relationshipRoutes := apiV1.Group("/relationships")
		relationshipRoutes.Use(auth.AuthMiddleware())
		{
			relationshipRoutes.POST("", handler.InitiateRelationship)
			relationshipRoutes.POST("/:id/respond", handler.RespondToRelationship)
			relationshipRoutes.POST("/:id/cancel", handler.CancelRelationship)
			relationshipRoutes.POST("/:id/pingback", handler.PingBack)
			relationshipRoutes.POST("/:id/remove-interest", handler.RemoveInterest)
			relationshipRoutes.POST("/:id/block", handler.BlockRelationship)
		}

		// Candidate discovery (protected)
		candidateRoutes := apiV1.Group("/candidates")
		candidateRoutes.Use(auth.AuthMiddleware())
		{
			candidateRoutes.GET("", handler.GetCandidates)
		}

		// Public Activity routes (protected)
		activityRoutes := apiV1.Group("/activities")
		activityRoutes.Use(auth.AuthMiddleware())
		{
			activityRoutes.GET("", handler.GetActivities)
			activityRoutes.GET("/:id", handler.GetActivityByID)
			activityRoutes.PUT("/:id/preference", handler.SetActivityPreference)
			activityRoutes.DELETE("/:id/preference", handler.RemoveActivityPreference)
		}

		// Meetup routes (protected)
		meetupRoutes := apiV1.Group("/meetups")
		meetupRoutes.Use(auth.AuthMiddleware())
		{
			meetupRoutes.POST("", handler.CreateMeetup)
			meetupRoutes.GET("", handler.SearchMeetups)
			meetupRoutes.GET("/:id", handler.GetMeetupByID)
			meetupRoutes.POST("/:id/join", handler.JoinMeetup)
			meetupRoutes.POST("/leave", handler.LeaveMeetup) // No ID needed, user leaves their own meetup
			meetupRoutes.PUT("/:id", handler.UpdateMeetup)
			meetupRoutes.DELETE("/:id/members/:userID", handler.KickMember)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			// Tags CRUD
			tags := adminRoutes.Group("/tags")
			{
				tags.POST("", handler.CreateTag)
				tags.GET("", handler.GetTags)
				tags.PUT("/:id", handler.UpdateTag)
				tags.DELETE("/:id", handler.DeleteTag)
			}

			// Activities CRUD (admin-only parts)
			adminActivityRoutes := adminRoutes.Group("/activities")
			{
				adminActivityRoutes.POST("", handler.CreateActivity)
				adminActivityRoutes.PUT("/:id", handler.UpdateActivity)
				adminActivityRoutes.DELETE("/:id", handler.DeleteActivity)
			}
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ListenAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ListenAddr))
}
