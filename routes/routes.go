package routes

import (
	"performance-review-api/controllers"
	"performance-review-api/middleware"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Performance Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Review cycles
			cycles := protected.Group("/cycles")
			{
				cycles.GET("", controllers.GetCycles)
				cycles.GET("/:id", controllers.GetCycle)

				// Cycle administration
				cycles.POST("", middleware.RequireRole(models.RoleAdminID), controllers.CreateCycle)
				cycles.PUT("/:id", middleware.RequireRole(models.RoleAdminID), controllers.UpdateCycle)
				cycles.DELETE("/:id", middleware.RequireRole(models.RoleAdminID), controllers.DeleteCycle)

				// Workflow operations
				cycles.POST("/:id/start", middleware.RequireRole(models.RoleAdminID), controllers.StartCycle)
				cycles.POST("/:id/advance", middleware.RequireRole(models.RoleAdminID), controllers.AdvancePhase)
				cycles.PUT("/:id/phases", middleware.RequireRole(models.RoleAdminID), controllers.ConfigurePhases)
				cycles.POST("/:id/assign", middleware.RequireRole(models.RoleAdminID), controllers.AssignReviews)
				cycles.POST("/:id/bulk-assign", middleware.RequireRole(models.RoleAdminID), controllers.BulkAssignReviews)
			}

			// Reviews
			reviews := protected.Group("/reviews")
			{
				reviews.GET("/mine", controllers.GetMyReviews)
				reviews.GET("/about-me", controllers.GetReviewsAboutMe)
				reviews.GET("/:id", controllers.GetReview)
				reviews.PUT("/:id/draft", controllers.SaveReviewDraft)
				reviews.POST("/:id/submit", controllers.SubmitReview)
				reviews.POST("/:id/resubmit", controllers.ResubmitReview)

				// Approval workflow (managers and admins)
				reviews.POST("/:id/approve",
					middleware.RequireRole(models.RoleManagerID, models.RoleAdminID),
					controllers.ApproveReview)
				reviews.POST("/:id/reject",
					middleware.RequireRole(models.RoleManagerID, models.RoleAdminID),
					controllers.RejectReview)
			}

			protected.GET("/approvals/pending",
				middleware.RequireRole(models.RoleManagerID, models.RoleAdminID),
				controllers.GetPendingApprovals)

			// Review templates
			templates := protected.Group("/templates")
			{
				templates.GET("", controllers.GetTemplates)
				templates.GET("/:id", controllers.GetTemplate)
				templates.POST("", middleware.RequireRole(models.RoleAdminID), controllers.CreateTemplate)
			}

			// Goals
			goals := protected.Group("/goals")
			{
				goals.GET("", controllers.GetGoals)
				goals.POST("", controllers.CreateGoal)
				goals.PUT("/:id", controllers.UpdateGoal)
				goals.DELETE("/:id", controllers.DeleteGoal)
			}

			// Feedback
			feedback := protected.Group("/feedback")
			{
				feedback.GET("", controllers.GetFeedback)
				feedback.GET("/sent", controllers.GetSentFeedback)
				feedback.POST("", controllers.CreateFeedback)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// Workflow administration
			protected.POST("/admin/workflow/sweep",
				middleware.RequireRole(models.RoleAdminID),
				controllers.RunWorkflowSweep)
		}

	}

	// 404 handler for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
