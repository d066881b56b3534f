package api

import (
	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services groups what the routes need.
type Services struct {
	Auth         service.AuthService
	Profile      service.ProfileService
	Workouts     service.WorkoutService
	Subscription service.SubscriptionService
	Orchestrator *assistant.Orchestrator
	Players      *assistant.Players // nil disables speech
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profile)
	workoutHandler := NewWorkoutHandler(svc.Workouts)
	subscriptionHandler := NewSubscriptionHandler(svc.Subscription)
	assistantHandler := NewAssistantHandler(svc.Orchestrator, svc.Subscription, svc.Players)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		meGroup := protected.Group("/me")
		{
			meGroup.GET("", profileHandler.GetMe)
			meGroup.PUT("", profileHandler.UpdateMe)
			meGroup.PUT("/password", authHandler.ChangePassword)
			meGroup.POST("/avatar/upload-url", profileHandler.RequestAvatarUploadURL)
			meGroup.PUT("/avatar", profileHandler.ConfirmAvatar)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.SaveWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("/plan", workoutHandler.GeneratePlan)
			workoutGroup.POST("/generate", workoutHandler.GenerateWorkout)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
		}

		// --- Assistant Routes ---
		assistantGroup := protected.Group("/assistant")
		{
			assistantGroup.POST("", assistantHandler.Chat)
			assistantGroup.POST("/speech", assistantHandler.Speak)
			assistantGroup.DELETE("/speech", assistantHandler.StopSpeech)
			assistantGroup.GET("/speech", assistantHandler.SpeechState)
		}

		subscriptionGroup := protected.Group("/subscription")
		{
			subscriptionGroup.GET("", subscriptionHandler.GetSubscription)
			subscriptionGroup.POST("/checkout", subscriptionHandler.CreateCheckout)
			subscriptionGroup.POST("/activate-test", subscriptionHandler.ActivateTest)
		}
	}
}
