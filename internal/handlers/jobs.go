package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/services"
	"github.com/startin-app/startin/pkg/response"
)

// JobHandler manages postings and applications within the caller's tenant.
type JobHandler struct {
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// POST /api/company/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var input services.JobInput
	if !bindAndValidate(c, &input) {
		return
	}

	job, err := h.jobs.CreateJob(requestContext(c), currentUserID(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Job posted", job)
}

// GET /api/student/jobs
func (h *JobHandler) ListOpen(c *gin.Context) {
	listings, err := h.jobs.ListOpenJobs(requestContext(c), currentUniversityID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Open jobs", listings)
}

// GET /api/company/jobs
func (h *JobHandler) CompanyJobs(c *gin.Context) {
	listings, err := h.jobs.CompanyJobs(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Your postings", listings)
}

// POST /api/student/jobs/:id/apply
func (h *JobHandler) Apply(c *gin.Context) {
	application, err := h.jobs.Apply(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", application)
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /api/company/applications/:id/status
func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	var req statusUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	application, err := h.jobs.UpdateApplicationStatus(requestContext(c), c.Param("id"), models.ApplicationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Status updated", application)
}

// GET /api/student/applications
func (h *JobHandler) StudentApplications(c *gin.Context) {
	applications, err := h.jobs.StudentApplications(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Your applications", applications)
}

// GET /api/company/applicants
func (h *JobHandler) CompanyApplicants(c *gin.Context) {
	groups, err := h.jobs.CompanyApplicants(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Applicants by posting", groups)
}
