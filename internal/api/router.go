package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/startin-app/startin/internal/auth"
	"github.com/startin-app/startin/internal/cache"
	"github.com/startin-app/startin/internal/handlers"
	"github.com/startin-app/startin/internal/middleware"
	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/services"
)

// Services bundles the wired service layer for route registration.
type Services struct {
	OTP            *services.OTPService
	Signup         *services.SignupService
	Login          *services.LoginService
	PasswordReset  *services.PasswordResetService
	Passkeys       *services.PasskeyService
	StudentProfile *services.StudentProfileService
	CompanyProfile *services.CompanyProfileService
	Jobs           *services.JobService
	Imports        *services.ImportService
	Admin          *services.AdminService
}

// Options carries the cross-cutting knobs the router needs.
type Options struct {
	AllowedOrigins  []string
	RateLimitStore  cache.Store
	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxUploadBytes  int64
}

// NewRouter builds the Gin engine, wires middleware and registers the route
// table for students, companies, and admins.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, svcs Services, opts Options) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(opts.AllowedOrigins...))
	r.Use(middleware.RateLimit(opts.RateLimitStore, opts.RateLimitMax, opts.RateLimitWindow))

	r.NoRoute(middleware.NotFoundHandler)

	// Health and metrics endpoints (public)
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(svcs.OTP, svcs.Signup, svcs.Login)
	resetHandler := handlers.NewPasswordResetHandler(svcs.PasswordReset)
	passkeyHandler := handlers.NewPasskeyHandler(svcs.Passkeys)
	studentProfileHandler := handlers.NewStudentProfileHandler(svcs.StudentProfile, opts.MaxUploadBytes)
	companyProfileHandler := handlers.NewCompanyProfileHandler(svcs.CompanyProfile)
	jobHandler := handlers.NewJobHandler(svcs.Jobs)
	adminHandler := handlers.NewAdminHandler(svcs.Admin, svcs.Imports, svcs.Passkeys)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/student/signup", authHandler.StudentSignup)
		auth.POST("/student/verify-otp", authHandler.VerifyOTP)
		auth.POST("/student/resend-otp", authHandler.ResendOTP)
		auth.POST("/student/login", authHandler.StudentLogin)

		auth.POST("/company/signup", authHandler.CompanySignup)
		auth.POST("/company/verify-otp", authHandler.VerifyOTP)
		auth.POST("/company/resend-otp", authHandler.ResendOTP)
		auth.POST("/company/login", authHandler.CompanyLogin)
		auth.POST("/company/verify-passkey", passkeyHandler.VerifyInvite)

		auth.POST("/admin/login", authHandler.AdminLogin)

		auth.POST("/university/verify-passkey", passkeyHandler.VerifyUniversity)

		auth.POST("/password-reset/request", resetHandler.Request)
		auth.POST("/password-reset/verify", resetHandler.Verify)
		auth.POST("/password-reset/reset", resetHandler.Reset)
	}

	requireAuth := middleware.Auth(jwt)

	// Student routes
	student := r.Group("/api/student")
	student.Use(requireAuth, middleware.RequireUserType(string(models.AccountTypeStudent)))
	{
		student.GET("/profile", studentProfileHandler.Get)
		student.POST("/profile", studentProfileHandler.Create)
		student.PUT("/profile", studentProfileHandler.Update)
		student.GET("/profile/resume", studentProfileHandler.DownloadResume)

		student.GET("/jobs", jobHandler.ListOpen)
		student.POST("/jobs/:id/apply", jobHandler.Apply)
		student.GET("/applications", jobHandler.StudentApplications)
	}

	// Company routes
	company := r.Group("/api/company")
	company.Use(requireAuth, middleware.RequireUserType(string(models.AccountTypeCompany)))
	{
		company.GET("/profile", companyProfileHandler.Get)
		company.POST("/profile", companyProfileHandler.Create)
		company.PUT("/profile", companyProfileHandler.Update)

		company.GET("/jobs", jobHandler.CompanyJobs)
		company.POST("/jobs", jobHandler.Create)
		company.GET("/applicants", jobHandler.CompanyApplicants)
		company.PATCH("/applications/:id/status", jobHandler.UpdateApplicationStatus)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(requireAuth, middleware.RequireUserType(iauth.UserTypeAdmin))
	{
		admin.GET("/universities", adminHandler.ListUniversities)
		admin.POST("/universities/upload", adminHandler.UploadUniversities)
		admin.DELETE("/universities/:id", adminHandler.DeleteUniversity)

		admin.GET("/invites", adminHandler.ListInvites)
		admin.POST("/invites", adminHandler.AddInvite)
		admin.POST("/invites/upload", adminHandler.UploadInvites)
		admin.DELETE("/invites/:id", adminHandler.DeleteInvite)

		admin.GET("/companies", adminHandler.ListCompanies)
		admin.GET("/generate-passkey", adminHandler.GeneratePasskey)
	}

	return r, nil
}
