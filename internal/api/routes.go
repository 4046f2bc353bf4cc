package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fittrack/fitness-app/internal/metrics"
	"fittrack/fitness-app/internal/service"
)

type Services struct {
	Auth        service.AuthService
	Profile     service.ProfileService
	SetupStatus service.SetupStatusService
	Exercise    service.ExerciseService
	Plan        service.PlanService
	Session     service.SessionService
	History     service.HistoryService
	Demo        service.DemoService
}

// RouterOptions carries the HTTP plumbing. Nil limiters disable rate limiting.
type RouterOptions struct {
	Metrics     *metrics.Manager
	Gatherer    prometheus.Gatherer
	Limiter     *RateLimiter
	AuthLimiter *RateLimiter
}

func SetupRoutes(router *gin.Engine, services Services, opts RouterOptions) {
	authHandler := NewAuthHandler(services.Auth)
	profileHandler := NewProfileHandler(services.Profile, services.SetupStatus)
	exerciseHandler := NewExerciseHandler(services.Exercise)
	planHandler := NewPlanHandler(services.Plan)
	sessionHandler := NewSessionHandler(services.Session)
	historyHandler := NewHistoryHandler(services.History, services.Demo)

	router.Use(PanicRecovery(opts.Metrics), LogRequest())
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}
	if opts.Limiter != nil {
		router.Use(opts.Limiter.Middleware())
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	// target of the links in verification and recovery mails
	router.GET("/auth/confirm", authHandler.Confirm)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		if opts.AuthLimiter != nil {
			authGroup.Use(opts.AuthLimiter.Middleware())
		}
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/verify", authHandler.Verify)
			authGroup.POST("/password/reset", authHandler.RequestPasswordReset)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(services.Auth))
	{
		protected.POST("/auth/password/update", authHandler.UpdatePassword)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)

		protected.GET("/profile", profileHandler.GetProfile)
		protected.POST("/profile", profileHandler.CreateProfile)
		protected.PATCH("/profile", profileHandler.UpdateProfile)
		protected.GET("/profile/setup-status", profileHandler.GetSetupStatus)
		protected.DELETE("/profile/setup-status", profileHandler.ResetSetupStatus)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.POST("/:id/video-upload-url", exerciseHandler.RequestVideoUploadURL)
			exerciseGroup.POST("/:id/video-confirm", exerciseHandler.ConfirmVideoUpload)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.GeneratePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/active", planHandler.GetActivePlan)
			planGroup.GET("/:planId", planHandler.GetPlan)
		}
		protected.GET("/recommendations", planHandler.GetRecommendations)

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.StartSession)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.PUT("/:id/sets", sessionHandler.LogSet)
			sessionGroup.POST("/:id/sets/complete", sessionHandler.CompleteSet)
			sessionGroup.POST("/:id/extra-sets", sessionHandler.AddExtraSet)
			sessionGroup.POST("/:id/exercises", sessionHandler.AddExercise)
			sessionGroup.POST("/:id/rest/skip", sessionHandler.SkipRest)
			sessionGroup.POST("/:id/complete", sessionHandler.CompleteSession)
		}

		protected.GET("/history", historyHandler.GetHistory)
		protected.GET("/history/exercises/:exerciseId", historyHandler.GetExerciseProgress)
		protected.GET("/insights", historyHandler.GetInsights)
		protected.POST("/demo/history", historyHandler.SeedDemoHistory)
	}
}
