package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/services"
	appErrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/response"
)

// StudentProfileHandler manages the student's own profile and resume.
type StudentProfileHandler struct {
	profiles       *services.StudentProfileService
	maxUploadBytes int64
}

func NewStudentProfileHandler(profiles *services.StudentProfileService, maxUploadBytes int64) *StudentProfileHandler {
	return &StudentProfileHandler{profiles: profiles, maxUploadBytes: maxUploadBytes}
}

// GET /api/student/profile
func (h *StudentProfileHandler) Get(c *gin.Context) {
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

// POST /api/student/profile
func (h *StudentProfileHandler) Create(c *gin.Context) {
	input, resume, cleanup, ok := h.bindProfileForm(c)
	if !ok {
		return
	}
	defer cleanup()

	profile, err := h.profiles.Create(requestContext(c), currentUserID(c), input, resume)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Profile created", profile)
}

// PUT /api/student/profile
func (h *StudentProfileHandler) Update(c *gin.Context) {
	input, resume, cleanup, ok := h.bindProfileForm(c)
	if !ok {
		return
	}
	defer cleanup()

	profile, err := h.profiles.Update(requestContext(c), currentUserID(c), input, resume)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// GET /api/student/profile/resume
func (h *StudentProfileHandler) DownloadResume(c *gin.Context) {
	reader, filename, err := h.profiles.OpenResume(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

// bindProfileForm reads the multipart profile fields plus the optional
// resume part. The returned cleanup closes the upload.
func (h *StudentProfileHandler) bindProfileForm(c *gin.Context) (services.StudentProfileInput, *services.ResumeUpload, func(), bool) {
	input := services.StudentProfileInput{
		FullName: c.PostForm("full_name"),
		About:    c.PostForm("about"),
		Skills:   c.PostForm("skills"),
		GitHub:   c.PostForm("github"),
		LinkedIn: c.PostForm("linkedin"),
	}
	cleanup := func() {}

	if !validateStruct(c, &input) {
		return input, nil, cleanup, false
	}

	header, err := c.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, nil, cleanup, true
		}
		response.Error(c, appErrors.NewBadRequest("invalid multipart payload"))
		return input, nil, cleanup, false
	}

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, appErrors.NewBadRequest("resume file is too large"))
		return input, nil, cleanup, false
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("could not read resume upload"))
		return input, nil, cleanup, false
	}

	resume := &services.ResumeUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return input, resume, func() { _ = file.Close() }, true
}
