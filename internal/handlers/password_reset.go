package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/services"
	"github.com/startin-app/startin/pkg/response"
)

// PasswordResetHandler exposes the reset-token handshake for students and
// companies.
type PasswordResetHandler struct {
	reset *services.PasswordResetService
}

func NewPasswordResetHandler(reset *services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset}
}

type resetRequestPayload struct {
	Email        string `json:"email" validate:"required,email"`
	UniversityID string `json:"university_id"`
	UserType     string `json:"user_type" validate:"required"`
}

type resetVerifyPayload struct {
	Token string `json:"token" validate:"required"`
}

type resetPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// POST /api/auth/password-reset/request
func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req resetRequestPayload
	if !bindAndValidate(c, &req) {
		return
	}

	_, err := h.reset.RequestReset(requestContext(c), req.Email, req.UniversityID, models.AccountType(req.UserType))
	if err != nil {
		response.Error(c, err)
		return
	}

	// Identical acknowledgement whether or not the account exists.
	response.Success(c, http.StatusOK, "If the account exists, a reset link was sent", nil)
}

// POST /api/auth/password-reset/verify
func (h *PasswordResetHandler) Verify(c *gin.Context) {
	var req resetVerifyPayload
	if !bindAndValidate(c, &req) {
		return
	}

	row, err := h.reset.VerifyToken(requestContext(c), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token is valid", gin.H{
		"email":     row.Email,
		"user_type": row.UserType,
	})
}

// POST /api/auth/password-reset/reset
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req resetPayload
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.reset.ResetPassword(requestContext(c), req.Token, req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password updated", nil)
}
