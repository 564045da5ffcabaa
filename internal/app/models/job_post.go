package models

import "time"

// JobPost is an internship advertisement owned by a company.
type JobPost struct {
	ID          int64         `json:"jobPostId" db:"id"`
	Title       string        `json:"jobTitle" db:"title"`
	Description string        `json:"description" db:"description"`
	TechStack   *string       `json:"technologyStack,omitempty" db:"tech_stack"`
	JobType     *string       `json:"jobType,omitempty" db:"job_type"`
	JobRole     *string       `json:"jobRole,omitempty" db:"job_role"`
	Status      JobPostStatus `json:"status" db:"status"`
	PostedDate  time.Time     `json:"postedDate" db:"posted_date"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
	CompanyID   int64         `json:"companyId" db:"company_id"`
	Company     *Company      `json:"company,omitempty"`
}
