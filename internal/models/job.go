package models

import "time"

// Job posting categories.
const (
	JobTypeFullTime   = "full_time"
	JobTypePartTime   = "part_time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
)

// Experience levels.
const (
	ExperienceEntry   = "entry"
	ExperienceMid     = "mid"
	ExperienceSenior  = "senior"
	ExperienceLead    = "lead"
	ExperienceManager = "manager"
)

// Application lifecycle states.
const (
	ApplicationPending     = "pending"
	ApplicationViewed      = "viewed"
	ApplicationShortlisted = "shortlisted"
	ApplicationRejected    = "rejected"
)

// JobPosting is a job-board entry owned by the posting user.
type JobPosting struct {
	ID              int        `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Company         string     `db:"company" json:"company"`
	Description     string     `db:"description" json:"description"`
	Requirements    string     `db:"requirements" json:"requirements"`
	Location        string     `db:"location" json:"location"`
	JobType         string     `db:"job_type" json:"job_type"`
	ExperienceLevel string     `db:"experience_level" json:"experience_level"`
	SalaryRange     string     `db:"salary_range" json:"salary_range"`
	ApplicationURL  string     `db:"application_url" json:"application_url"`
	PostedByID      int        `db:"posted_by" json:"posted_by"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	Deadline        *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// JobApplication ties an applicant to a posting. One application per
// (job, applicant) pair. Resume files themselves are not stored, only the
// submitted file name.
type JobApplication struct {
	ID          int       `db:"id" json:"id"`
	JobID       int       `db:"job_id" json:"job_id"`
	ApplicantID int       `db:"applicant_id" json:"applicant_id"`
	CoverLetter string    `db:"cover_letter" json:"cover_letter"`
	ResumeName  string    `db:"resume_name" json:"resume_name"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidJobType reports whether t is one of the accepted posting types.
func ValidJobType(t string) bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

// ValidExperienceLevel reports whether l is an accepted level.
func ValidExperienceLevel(l string) bool {
	switch l {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead, ExperienceManager:
		return true
	}
	return false
}

// ValidApplicationStatus reports whether s is an accepted application state.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationPending, ApplicationViewed, ApplicationShortlisted, ApplicationRejected:
		return true
	}
	return false
}
