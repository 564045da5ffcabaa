package dto

// RegisterRequest is the self-registration payload. Role accepts the
// display aliases ("Intern", "Internship Seeker", ...).
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	Role        string  `json:"role" binding:"required"`
	FirstName   string  `json:"firstName" binding:"required"`
	LastName    string  `json:"lastName" binding:"required"`
	CompanyName *string `json:"companyName,omitempty"`
}

// RegisterResponse acknowledges a registration
type RegisterResponse struct {
	UserID int64  `json:"userId" example:"12"`
	Role   string `json:"role" example:"Company"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the OAuth access token obtained by the client
type GoogleLoginRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// LoginResponse is returned by password and Google login. CompanyID is set
// for Company users whose company row was found.
type LoginResponse struct {
	UserID    int64         `json:"userId" example:"12"`
	Email     string        `json:"email" example:"a@x.com"`
	Role      string        `json:"role" example:"Intern"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	CompanyID *int64        `json:"companyId"`
	Token     TokenResponse `json:"token"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts the OTP reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOtpRequest checks a code sent by ForgotPassword
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,numeric"`
}

// ResetPasswordRequest sets a new password after OTP verification
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}
