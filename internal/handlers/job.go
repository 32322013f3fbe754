package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/logger"
	"linkup-service/internal/models"
	"linkup-service/internal/observability"
	"linkup-service/internal/repositories"
)

// JobHandler serves the job board: postings owned by their authors and
// one-per-user applications reviewed by the poster.
type JobHandler struct {
	jobRepo          repositories.JobRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
}

// NewJobHandler builds a JobHandler.
func NewJobHandler(jobRepo repositories.JobRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, userRepo: userRepo, notificationRepo: notificationRepo}
}

type postingRequest struct {
	Title           string     `json:"title" binding:"required"`
	Company         string     `json:"company" binding:"required"`
	Description     string     `json:"description" binding:"required"`
	Requirements    string     `json:"requirements"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type" binding:"required"`
	ExperienceLevel string     `json:"experience_level" binding:"required"`
	SalaryRange     string     `json:"salary_range"`
	ApplicationURL  string     `json:"application_url"`
	Deadline        *time.Time `json:"deadline"`
}

func (r postingRequest) validate() error {
	if !models.ValidJobType(r.JobType) {
		return errors.New("invalid job_type")
	}
	if !models.ValidExperienceLevel(r.ExperienceLevel) {
		return errors.New("invalid experience_level")
	}
	return nil
}

// CreatePosting publishes a new job posting owned by the caller.
func (h *JobHandler) CreatePosting(c *gin.Context) {
	var req postingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posting, err := h.jobRepo.CreatePosting(c.Request.Context(), models.JobPosting{
		Title:           req.Title,
		Company:         req.Company,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		SalaryRange:     req.SalaryRange,
		ApplicationURL:  req.ApplicationURL,
		PostedByID:      currentUserID(c),
		Deadline:        req.Deadline,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create posting"})
		return
	}
	c.JSON(http.StatusCreated, posting)
}

// ListPostings returns a filtered, paginated page of active postings.
func (h *JobHandler) ListPostings(c *gin.Context) {
	filter := repositories.JobFilter{
		Query:           c.Query("q"),
		JobType:         c.Query("job_type"),
		ExperienceLevel: c.Query("experience_level"),
	}
	page := pageFromQuery(c)

	postings, total, err := h.jobRepo.ListPostings(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list postings"})
		return
	}
	c.JSON(http.StatusOK, paginated{
		Count:    total,
		Page:     page,
		PageSize: repositories.JobPageSize,
		Results:  postings,
	})
}

// GetPosting returns one posting by id.
func (h *JobHandler) GetPosting(c *gin.Context) {
	posting, ok := h.postingFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, posting)
}

// UpdatePosting rewrites a posting; only its author may do so.
func (h *JobHandler) UpdatePosting(c *gin.Context) {
	posting, ok := h.postingFromParam(c)
	if !ok {
		return
	}
	if posting.PostedByID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the poster can update this job"})
		return
	}

	var req postingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posting.Title = req.Title
	posting.Company = req.Company
	posting.Description = req.Description
	posting.Requirements = req.Requirements
	posting.Location = req.Location
	posting.JobType = req.JobType
	posting.ExperienceLevel = req.ExperienceLevel
	posting.SalaryRange = req.SalaryRange
	posting.ApplicationURL = req.ApplicationURL
	posting.Deadline = req.Deadline

	updated, err := h.jobRepo.UpdatePosting(c.Request.Context(), posting)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update posting"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeactivatePosting hides a posting from listings; only its author may do so.
func (h *JobHandler) DeactivatePosting(c *gin.Context) {
	posting, ok := h.postingFromParam(c)
	if !ok {
		return
	}
	if posting.PostedByID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the poster can deactivate this job"})
		return
	}

	if err := h.jobRepo.DeactivatePosting(c.Request.Context(), posting.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate posting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// Apply submits an application to a posting. One application per user per
// job; the poster cannot apply to their own posting.
func (h *JobHandler) Apply(c *gin.Context) {
	posting, ok := h.postingFromParam(c)
	if !ok {
		return
	}
	if !posting.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "this posting is no longer active"})
		return
	}

	applicantID := currentUserID(c)
	if posting.PostedByID == applicantID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot apply to your own posting"})
		return
	}

	var req struct {
		CoverLetter string `json:"cover_letter"`
		ResumeName  string `json:"resume_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.jobRepo.CreateApplication(c.Request.Context(), posting.ID, applicantID, req.CoverLetter, req.ResumeName)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyApplied) {
			c.JSON(http.StatusConflict, gin.H{"error": "you have already applied to this job"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit application"})
		return
	}

	if applicant, err := h.userRepo.GetByID(c.Request.Context(), applicantID); err == nil {
		h.notify(c, posting.PostedByID, "New Job Application",
			fmt.Sprintf("%s applied to %s", applicant.FullName(), posting.Title),
			models.NotificationJobApplication, app.ID)
	}
	c.JSON(http.StatusCreated, app)
}

// ListApplications returns the applications for a posting; poster only.
func (h *JobHandler) ListApplications(c *gin.Context) {
	posting, ok := h.postingFromParam(c)
	if !ok {
		return
	}
	if posting.PostedByID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the poster can view applications"})
		return
	}

	apps, err := h.jobRepo.ListApplicationsForJob(c.Request.Context(), posting.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": apps})
}

// MyApplications returns the caller's own applications.
func (h *JobHandler) MyApplications(c *gin.Context) {
	apps, err := h.jobRepo.ListApplicationsForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": apps})
}

// SetApplicationStatus moves an application through review; poster only. The
// applicant is notified of the new state.
func (h *JobHandler) SetApplicationStatus(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("application_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !models.ValidApplicationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	app, err := h.jobRepo.GetApplication(c.Request.Context(), applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up application"})
		return
	}

	posting, err := h.jobRepo.GetPosting(c.Request.Context(), app.JobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up posting"})
		return
	}
	if posting.PostedByID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the poster can review applications"})
		return
	}

	updated, err := h.jobRepo.SetApplicationStatus(c.Request.Context(), applicationID, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
		return
	}

	h.notify(c, app.ApplicantID, "Application Update",
		fmt.Sprintf("Your application for %s is now %s", posting.Title, req.Status),
		models.NotificationJobStatus, app.ID)
	c.JSON(http.StatusOK, updated)
}

func (h *JobHandler) postingFromParam(c *gin.Context) (models.JobPosting, bool) {
	jobID, err := strconv.Atoi(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return models.JobPosting{}, false
	}

	posting, err := h.jobRepo.GetPosting(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job posting not found"})
			return models.JobPosting{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up posting"})
		return models.JobPosting{}, false
	}
	return posting, true
}

func (h *JobHandler) notify(c *gin.Context, userID int, title, message, notificationType string, relatedID int) {
	if _, err := h.notificationRepo.Create(c.Request.Context(), userID, title, message, notificationType, relatedID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to create notification")
		return
	}
	observability.IncNotificationCreated()
}
