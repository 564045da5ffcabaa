package dto

// UpdateCompanyRequest carries the editable company fields. CompanyID must
// equal the id in the path.
type UpdateCompanyRequest struct {
	CompanyID    int64   `json:"companyId"`
	Name         string  `json:"companyName" binding:"required"`
	ContactEmail string  `json:"contactEmail" binding:"required,email"`
	Industry     string  `json:"industry"`
	Website      *string `json:"website,omitempty"`
	Description  *string `json:"description,omitempty"`
	Location     *string `json:"location,omitempty"`
}
