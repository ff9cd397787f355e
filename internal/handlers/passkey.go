package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/services"
	"github.com/startin-app/startin/pkg/response"
)

// PasskeyHandler exposes the bcrypt-scan passkey checks that gate student
// and company onboarding.
type PasskeyHandler struct {
	passkeys *services.PasskeyService
}

func NewPasskeyHandler(passkeys *services.PasskeyService) *PasskeyHandler {
	return &PasskeyHandler{passkeys: passkeys}
}

type passkeyRequest struct {
	Passkey string `json:"passkey" validate:"required"`
}

// POST /api/auth/university/verify-passkey
func (h *PasskeyHandler) VerifyUniversity(c *gin.Context) {
	var req passkeyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	university, err := h.passkeys.VerifyUniversityPasskey(requestContext(c), req.Passkey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Passkey accepted", gin.H{
		"university_id":   university.ID,
		"university_name": university.Name,
	})
}

// POST /api/auth/company/verify-passkey
func (h *PasskeyHandler) VerifyInvite(c *gin.Context) {
	var req passkeyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invite, err := h.passkeys.VerifyCompanyInvite(requestContext(c), req.Passkey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Passkey accepted", gin.H{
		"email": invite.Email,
		"name":  invite.Name,
	})
}
