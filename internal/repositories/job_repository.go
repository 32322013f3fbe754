package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"linkup-service/internal/models"
)

var (
	ErrJobNotFound         = errors.New("job posting not found")
	ErrApplicationNotFound = errors.New("job application not found")
	ErrAlreadyApplied      = errors.New("already applied to this job")
)

// JobPageSize bounds job-board listing pages.
const JobPageSize = 10

// JobFilter narrows posting listings. Zero values mean "no filter".
type JobFilter struct {
	Query           string
	JobType         string
	ExperienceLevel string
}

// JobRepository covers job postings and their applications.
type JobRepository interface {
	CreatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error)
	GetPosting(ctx context.Context, jobID int) (models.JobPosting, error)
	UpdatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error)
	DeactivatePosting(ctx context.Context, jobID int) error
	ListPostings(ctx context.Context, filter JobFilter, page int) ([]models.JobPosting, int, error)

	CreateApplication(ctx context.Context, jobID, applicantID int, coverLetter, resumeName string) (models.JobApplication, error)
	GetApplication(ctx context.Context, applicationID int) (models.JobApplication, error)
	SetApplicationStatus(ctx context.Context, applicationID int, status string) (models.JobApplication, error)
	ListApplicationsForJob(ctx context.Context, jobID int) ([]models.JobApplication, error)
	ListApplicationsForUser(ctx context.Context, applicantID int) ([]models.JobApplication, error)
}

// JobRepo is a sqlx implementation of JobRepository.
type JobRepo struct {
	db *sqlx.DB
}

// NewJobRepo constructs a JobRepo.
func NewJobRepo(db *sqlx.DB) *JobRepo {
	return &JobRepo{db: db}
}

const postingColumns = `id, title, company, description, requirements, location, job_type,
    experience_level, salary_range, application_url, posted_by, is_active, deadline, created_at, updated_at`

const applicationColumns = `id, job_id, applicant_id, cover_letter, resume_name, status, created_at, updated_at`

// CreatePosting inserts a posting.
func (r *JobRepo) CreatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error) {
	var created models.JobPosting
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO job_postings (title, company, description, requirements, location, job_type,
            experience_level, salary_range, application_url, posted_by, deadline)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING `+postingColumns,
		posting.Title, posting.Company, posting.Description, posting.Requirements, posting.Location,
		posting.JobType, posting.ExperienceLevel, posting.SalaryRange, posting.ApplicationURL,
		posting.PostedByID, posting.Deadline).
		StructScan(&created)
	return created, err
}

// GetPosting fetches a posting by id.
func (r *JobRepo) GetPosting(ctx context.Context, jobID int) (models.JobPosting, error) {
	var posting models.JobPosting
	err := r.db.GetContext(ctx, &posting, `SELECT `+postingColumns+` FROM job_postings WHERE id=$1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobPosting{}, ErrJobNotFound
	}
	return posting, err
}

// UpdatePosting rewrites the mutable posting fields.
func (r *JobRepo) UpdatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error) {
	var updated models.JobPosting
	err := r.db.QueryRowxContext(ctx,
		`UPDATE job_postings SET title=$2, company=$3, description=$4, requirements=$5, location=$6,
            job_type=$7, experience_level=$8, salary_range=$9, application_url=$10, deadline=$11,
            is_active=$12, updated_at=NOW()
         WHERE id=$1 RETURNING `+postingColumns,
		posting.ID, posting.Title, posting.Company, posting.Description, posting.Requirements,
		posting.Location, posting.JobType, posting.ExperienceLevel, posting.SalaryRange,
		posting.ApplicationURL, posting.Deadline, posting.IsActive).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobPosting{}, ErrJobNotFound
	}
	return updated, err
}

// DeactivatePosting hides a posting from listings without deleting it.
func (r *JobRepo) DeactivatePosting(ctx context.Context, jobID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE job_postings SET is_active = FALSE, updated_at = NOW() WHERE id=$1`, jobID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrJobNotFound
	}
	return nil
}

// ListPostings returns one page of active postings matching the filter,
// newest first, plus the total match count.
func (r *JobRepo) ListPostings(ctx context.Context, filter JobFilter, page int) ([]models.JobPosting, int, error) {
	if page < 1 {
		page = 1
	}
	where := `is_active = TRUE
        AND ($1 = '' OR title ILIKE '%'||$1||'%' OR company ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
        AND ($2 = '' OR job_type = $2)
        AND ($3 = '' OR experience_level = $3)`

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM job_postings WHERE `+where,
		filter.Query, filter.JobType, filter.ExperienceLevel)
	if err != nil {
		return nil, 0, err
	}

	postings := []models.JobPosting{}
	err = r.db.SelectContext(ctx, &postings,
		`SELECT `+postingColumns+` FROM job_postings WHERE `+where+`
         ORDER BY created_at DESC, id DESC
         LIMIT $4 OFFSET $5`,
		filter.Query, filter.JobType, filter.ExperienceLevel, JobPageSize, (page-1)*JobPageSize)
	return postings, total, err
}

// CreateApplication inserts an application. The (job_id, applicant_id)
// uniqueness constraint rejects duplicates atomically.
func (r *JobRepo) CreateApplication(ctx context.Context, jobID, applicantID int, coverLetter, resumeName string) (models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO job_applications (job_id, applicant_id, cover_letter, resume_name)
         VALUES ($1, $2, $3, $4) RETURNING `+applicationColumns,
		jobID, applicantID, coverLetter, resumeName).
		StructScan(&app)
	if isUniqueViolation(err) {
		return models.JobApplication{}, ErrAlreadyApplied
	}
	return app, err
}

// GetApplication fetches an application by id.
func (r *JobRepo) GetApplication(ctx context.Context, applicationID int) (models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.GetContext(ctx, &app,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id=$1`, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobApplication{}, ErrApplicationNotFound
	}
	return app, err
}

// SetApplicationStatus moves an application through its review states.
func (r *JobRepo) SetApplicationStatus(ctx context.Context, applicationID int, status string) (models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.QueryRowxContext(ctx,
		`UPDATE job_applications SET status=$2, updated_at=NOW() WHERE id=$1 RETURNING `+applicationColumns,
		applicationID, status).
		StructScan(&app)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobApplication{}, ErrApplicationNotFound
	}
	return app, err
}

// ListApplicationsForJob returns every application for a posting.
func (r *JobRepo) ListApplicationsForJob(ctx context.Context, jobID int) ([]models.JobApplication, error) {
	apps := []models.JobApplication{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM job_applications WHERE job_id=$1
         ORDER BY created_at DESC, id DESC`,
		jobID)
	return apps, err
}

// ListApplicationsForUser returns the user's own applications.
func (r *JobRepo) ListApplicationsForUser(ctx context.Context, applicantID int) ([]models.JobApplication, error) {
	apps := []models.JobApplication{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM job_applications WHERE applicant_id=$1
         ORDER BY created_at DESC, id DESC`,
		applicantID)
	return apps, err
}
