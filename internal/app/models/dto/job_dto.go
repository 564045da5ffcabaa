package dto

// CreateJobPostRequest represents a new job post
type CreateJobPostRequest struct {
	Title       string  `json:"jobTitle" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	TechStack   *string `json:"technologyStack,omitempty"`
	JobType     *string `json:"jobType,omitempty"`
	JobRole     *string `json:"jobRole,omitempty"`
	CompanyID   int64   `json:"companyId" binding:"required,min=1"`
}

// CreateJobPostResponse acknowledges a job post
type CreateJobPostResponse struct {
	JobID int64 `json:"jobId" example:"4"`
}

// UpdateJobPostRequest replaces the mutable job post fields. JobPostID must
// equal the id in the path; an empty Status keeps the current one.
type UpdateJobPostRequest struct {
	JobPostID   int64   `json:"jobPostId"`
	Title       string  `json:"jobTitle" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	TechStack   *string `json:"technologyStack,omitempty"`
	JobType     *string `json:"jobType,omitempty"`
	JobRole     *string `json:"jobRole,omitempty"`
	Status      string  `json:"status,omitempty" binding:"omitempty,oneof=Pending Active Closed Flagged"`
}

// JobStatusRequest sets the moderation status of a job post
type JobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Active Closed Flagged"`
}

// CreateJobApplicationRequest applies a student to a job post
type CreateJobApplicationRequest struct {
	JobPostID int64 `json:"jobPostId" binding:"required,min=1"`
	StudentID int64 `json:"studentId" binding:"required,min=1"`
}

// CreateJobApplicationResponse acknowledges an application
type CreateJobApplicationResponse struct {
	ApplicationID int64 `json:"applicationId" example:"9"`
}

// ApplicationStatusRequest moves an application through review
type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Reviewed Accepted Rejected"`
}
