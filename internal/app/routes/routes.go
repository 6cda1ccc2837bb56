package routes

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/controllers"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/bobasi/bursary/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Controllers groups every HTTP controller
type Controllers struct {
	Auth          *controllers.AuthController
	Applications  *controllers.ApplicationController
	Reviews       *controllers.ReviewController
	Disbursements *controllers.DisbursementController
	Notifications *controllers.NotificationController
	Documents     *controllers.DocumentController
	Admin         *controllers.AdminController
	Students      *controllers.StudentController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	trackLimiter *middleware.RateLimiter,
) {
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", c.Auth.Register)
		authRoutes.POST("/login", c.Auth.Login)
	}
	v1.GET("/track/:number", trackLimiter.Handler(), c.Applications.Track)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", c.Auth.Me)
	authenticated.POST("/auth/change-password", c.Auth.ChangePassword)

	applications := authenticated.Group("/applications")
	{
		applications.POST("", authMiddleware.RolesRequired(auth.OpSubmitApplication), c.Applications.Submit)
		applications.GET("/mine", authMiddleware.RolesRequired(auth.OpViewOwnApplications), c.Applications.ListMine)
		applications.GET("", authMiddleware.RolesRequired(auth.OpViewAllApplications), c.Applications.List)
		// Owner or staff; the service decides.
		applications.GET("/:id", c.Applications.Get)
		applications.PATCH("/:id/status", authMiddleware.RolesRequired(auth.OpUpdateApplicationStatus), c.Applications.UpdateStatus)

		applications.POST("/:id/reviews", authMiddleware.RolesRequired(auth.OpRecordReview), c.Reviews.Record)
		applications.GET("/:id/reviews", authMiddleware.RolesRequired(auth.OpRecordReview), c.Reviews.List)

		applications.POST("/:id/documents", authMiddleware.RolesRequired(auth.OpUploadDocument), c.Documents.Upload)
		applications.GET("/:id/documents", c.Documents.List)
	}

	finance := authenticated.Group("")
	finance.Use(authMiddleware.RolesRequired(auth.OpDisburse))
	{
		finance.POST("/disbursements", c.Disbursements.Disburse)
		finance.GET("/disbursements", c.Disbursements.List)
		finance.GET("/grants", c.Disbursements.ListGrants)
	}
	authenticated.GET("/grants/mine", authMiddleware.RolesRequired(auth.OpViewOwnGrants), c.Disbursements.ListMyGrants)

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notifications.List)
		notifications.POST("/mark-read", c.Notifications.MarkRead)
	}

	authenticated.GET("/stats", authMiddleware.RolesRequired(auth.OpViewStatistics), c.Admin.Stats)
	authenticated.GET("/reports", authMiddleware.RolesRequired(auth.OpViewReports), c.Admin.Report)

	students := authenticated.Group("/students")
	students.Use(authMiddleware.RolesRequired(auth.OpViewStudents))
	{
		students.GET("", c.Students.List)
		students.GET("/:id", c.Students.Get)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RolesRequired(auth.OpManageUsers))
	{
		admin.GET("/users", c.Admin.ListUsers)
		admin.POST("/users", c.Admin.CreateUser)
		admin.PATCH("/users/:id/status", c.Admin.UpdateUserStatus)
		admin.DELETE("/users/:id", c.Admin.DeleteUser)
	}
}
