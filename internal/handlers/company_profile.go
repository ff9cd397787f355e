package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/services"
	"github.com/startin-app/startin/pkg/response"
)

// CompanyProfileHandler manages the company's own profile.
type CompanyProfileHandler struct {
	profiles *services.CompanyProfileService
}

func NewCompanyProfileHandler(profiles *services.CompanyProfileService) *CompanyProfileHandler {
	return &CompanyProfileHandler{profiles: profiles}
}

// GET /api/company/profile
func (h *CompanyProfileHandler) Get(c *gin.Context) {
	profile, ok, err := h.profiles.Get(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", gin.H{
		"exists":  ok,
		"profile": profile,
	})
}

// POST /api/company/profile
func (h *CompanyProfileHandler) Create(c *gin.Context) {
	var input services.CompanyProfileInput
	if !bindAndValidate(c, &input) {
		return
	}

	profile, err := h.profiles.Create(requestContext(c), currentUserID(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Profile created", profile)
}

// PUT /api/company/profile
func (h *CompanyProfileHandler) Update(c *gin.Context) {
	var input services.CompanyProfileInput
	if !bindAndValidate(c, &input) {
		return
	}

	profile, err := h.profiles.Update(requestContext(c), currentUserID(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", profile)
}
