package dto

// CreateStudentRequest creates a profile for a user that has none. Absent
// text fields are stored as empty strings.
type CreateStudentRequest struct {
	UserID     int64  `json:"userId" binding:"required,min=1"`
	University string `json:"university"`
	Degree     string `json:"degree"`
	GPA        string `json:"gpa"`
	Skills     string `json:"skills"`
	Gender     string `json:"gender"`
}

// UpdateStudentRequest replaces the academic fields. UserID must equal the
// id in the path. The NIC document is only set through its upload endpoint.
type UpdateStudentRequest struct {
	UserID     int64  `json:"userId"`
	University string `json:"university"`
	Degree     string `json:"degree"`
	GPA        string `json:"gpa"`
	Skills     string `json:"skills"`
	Gender     string `json:"gender"`
}
