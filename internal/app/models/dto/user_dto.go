package dto

// UpdateUserRequest carries the editable user fields. UserID must equal the
// id in the path.
type UpdateUserRequest struct {
	UserID    int64   `json:"userId"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Location  *string `json:"location,omitempty"`
	Industry  *string `json:"industry,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	UserID          int64  `json:"userId" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}
