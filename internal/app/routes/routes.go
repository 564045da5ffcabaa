package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/skillpivot/api/internal/app/controllers"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/middleware"
)

// Controllers groups the HTTP handlers mounted under /api.
type Controllers struct {
	Auth           *controllers.AuthController
	User           *controllers.UserController
	Company        *controllers.CompanyController
	JobPost        *controllers.JobPostController
	JobApplication *controllers.JobApplicationController
	Student        *controllers.StudentController
	Admin          *controllers.AdminController
	Health         *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	api.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/google-login", c.Auth.GoogleLogin)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/verify-otp", c.Auth.VerifyOtp)
		auth.POST("/reset-password", c.Auth.ResetPassword)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	users := api.Group("/users")
	{
		users.GET("", c.User.ListUsers)
		users.GET("/:id", c.User.GetUser)
		users.PUT("/:id", c.User.UpdateUser)
		users.DELETE("/:id", c.User.DeleteUser)
		users.POST("/upload-image/:id", c.User.UploadProfilePicture)
		users.POST("/change-password", authMiddleware.JWTAuth(), c.User.ChangePassword)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", c.Company.ListCompanies)
		companies.GET("/:id", c.Company.GetCompany)
		companies.PUT("/:id", c.Company.UpdateCompany)
		companies.POST("/:id/logo", c.Company.UploadLogo)
	}

	jobPosts := api.Group("/jobposts")
	{
		jobPosts.GET("", c.JobPost.ListJobPosts)
		jobPosts.POST("", c.JobPost.CreateJobPost)
		jobPosts.GET("/:id", c.JobPost.GetJobPost)
		jobPosts.PUT("/:id", c.JobPost.UpdateJobPost)
		jobPosts.DELETE("/:id", c.JobPost.DeleteJobPost)
	}

	applications := api.Group("/jobapplications")
	{
		applications.GET("", c.JobApplication.ListApplications)
		applications.POST("", c.JobApplication.Apply)
		applications.GET("/:id", c.JobApplication.GetApplication)
		applications.PUT("/:id/status", c.JobApplication.UpdateStatus)
		applications.DELETE("/:id", c.JobApplication.DeleteApplication)
	}

	students := api.Group("/students")
	{
		students.GET("", c.Student.ListStudents)
		students.POST("", c.Student.CreateStudent)
		students.GET("/user/:userId", c.Student.GetStudentByUser)
		students.PUT("/user/:userId", c.Student.UpdateStudent)
		students.POST("/upload-nic/:userId", c.Student.UploadNicDocument)
	}

	// --- Admin routes ---
	admin := api.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", c.Admin.ListUsers)
		admin.GET("/companies", c.Admin.ListCompanies)
		admin.GET("/jobs", c.Admin.ListJobs)
		admin.PUT("/verify-company/:id", c.Admin.VerifyCompany)
		admin.PUT("/verify-student/:userId", c.Admin.VerifyStudent)
		admin.PUT("/jobs/:id/status", c.Admin.SetJobStatus)
	}
}
