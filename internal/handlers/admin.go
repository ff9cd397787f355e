package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/services"
	appErrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/response"
)

// AdminHandler exposes the platform console: tenant and invite management
// plus the bulk spreadsheet imports.
type AdminHandler struct {
	admin    *services.AdminService
	imports  *services.ImportService
	passkeys *services.PasskeyService
}

func NewAdminHandler(admin *services.AdminService, imports *services.ImportService, passkeys *services.PasskeyService) *AdminHandler {
	return &AdminHandler{admin: admin, imports: imports, passkeys: passkeys}
}

// GET /api/admin/universities
func (h *AdminHandler) ListUniversities(c *gin.Context) {
	universities, err := h.admin.ListUniversities(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Universities", universities)
}

// POST /api/admin/universities/upload
func (h *AdminHandler) UploadUniversities(c *gin.Context) {
	filename, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imports.ImportUniversities(requestContext(c), filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Import finished", result)
}

// DELETE /api/admin/universities/:id
func (h *AdminHandler) DeleteUniversity(c *gin.Context) {
	if err := h.admin.DeleteUniversity(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "University deleted", nil)
}

// GET /api/admin/invites
func (h *AdminHandler) ListInvites(c *gin.Context) {
	invites, err := h.admin.ListCompanyInvites(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Company invites", invites)
}

// POST /api/admin/invites
func (h *AdminHandler) AddInvite(c *gin.Context) {
	var input services.InviteInput
	if !bindAndValidate(c, &input) {
		return
	}

	invite, err := h.admin.AddCompanyInvite(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Invite created", invite)
}

// POST /api/admin/invites/upload
func (h *AdminHandler) UploadInvites(c *gin.Context) {
	filename, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, created, err := h.imports.ImportCompanyInvites(requestContext(c), filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Import finished", gin.H{
		"result":  result,
		"created": created,
	})
}

// DELETE /api/admin/invites/:id
func (h *AdminHandler) DeleteInvite(c *gin.Context) {
	if err := h.admin.DeleteCompanyInvite(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Invite deleted", nil)
}

// GET /api/admin/companies
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	companies, err := h.admin.ListRegisteredCompanies(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Registered companies", companies)
}

// GET /api/admin/generate-passkey
func (h *AdminHandler) GeneratePasskey(c *gin.Context) {
	passkey, err := h.passkeys.GeneratePasskey()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Generated passkey", gin.H{"passkey": passkey})
}

func (h *AdminHandler) openUpload(c *gin.Context) (string, multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("a spreadsheet file is required"))
		return "", nil, false
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("could not read uploaded file"))
		return "", nil, false
	}
	return header.Filename, file, true
}
