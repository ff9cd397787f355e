package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/services"
	"github.com/startin-app/startin/pkg/response"
)

// AuthHandler manages the signup handshake and login flows for every user type.
type AuthHandler struct {
	otp    *services.OTPService
	signup *services.SignupService
	login  *services.LoginService
}

func NewAuthHandler(otp *services.OTPService, signup *services.SignupService, login *services.LoginService) *AuthHandler {
	return &AuthHandler{otp: otp, signup: signup, login: login}
}

type signupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	UniversityID string `json:"university_id" validate:"required"`
}

type verifyOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type resendOTPRequest struct {
	Email        string `json:"email" validate:"required,email"`
	UniversityID string `json:"university_id"`
}

type loginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	UniversityID string `json:"university_id" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/student/signup
func (h *AuthHandler) StudentSignup(c *gin.Context) {
	h.requestCode(c, models.AccountTypeStudent)
}

// POST /api/auth/company/signup
func (h *AuthHandler) CompanySignup(c *gin.Context) {
	h.requestCode(c, models.AccountTypeCompany)
}

func (h *AuthHandler) requestCode(c *gin.Context, accountType models.AccountType) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.otp.RequestCode(requestContext(c), req.Email, req.UniversityID, accountType); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Verification code sent", nil)
}

// POST /api/auth/student/verify-otp and /api/auth/company/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.signup.Complete(requestContext(c), req.Email, req.OTP, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Account created", result)
}

// POST /api/auth/student/resend-otp and /api/auth/company/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.otp.ResendCode(requestContext(c), req.Email, req.UniversityID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Verification code sent", nil)
}

// POST /api/auth/student/login
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.login.StudentLogin(requestContext(c), req.Email, req.UniversityID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", result)
}

// POST /api/auth/company/login
func (h *AuthHandler) CompanyLogin(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.login.CompanyLogin(requestContext(c), req.Email, req.UniversityID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", result)
}

// POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.login.AdminLogin(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", result)
}
