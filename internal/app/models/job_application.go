package models

import "time"

// JobApplication links a student to a job post.
type JobApplication struct {
	ID          int64             `json:"applicationId" db:"id"`
	JobPostID   int64             `json:"jobPostId" db:"job_post_id"`
	StudentID   int64             `json:"studentId" db:"student_id"`
	AppliedDate time.Time         `json:"appliedDate" db:"applied_date"`
	Status      ApplicationStatus `json:"status" db:"status"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// ApplicationSummary is the joined listing row: the application plus the
// title of its job post and the name of the posting company.
type ApplicationSummary struct {
	ApplicationID int64             `json:"applicationId"`
	JobPostID     int64             `json:"jobPostId"`
	StudentID     int64             `json:"studentId"`
	AppliedDate   time.Time         `json:"appliedDate"`
	Status        ApplicationStatus `json:"status"`
	JobTitle      *string           `json:"jobTitle"`
	CompanyName   *string           `json:"companyName"`
}
