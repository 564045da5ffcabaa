package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/auth"
	"github.com/skillpivot/api/internal/pkg/email"
	"github.com/skillpivot/api/internal/pkg/google"
)

// AuthConfig holds the password reset settings of the auth service.
type AuthConfig struct {
	OTPTTL             time.Duration
	OTPDigits          int
	RequireVerifiedOTP bool
}

// AuthService defines the authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GoogleLogin(ctx context.Context, accessToken string) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyOtp(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    UserStore
	companyRepo CompanyStore
	tokenRepo   RefreshTokenStore
	jwtService  *auth.JWTService
	mailer      email.Mailer
	google      google.Verifier
	config      AuthConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserStore,
	companyRepo CompanyStore,
	tokenRepo RefreshTokenStore,
	jwtService *auth.JWTService,
	mailer email.Mailer,
	verifier google.Verifier,
	config AuthConfig,
	logger zerolog.Logger,
) AuthService {
	if config.OTPTTL <= 0 {
		config.OTPTTL = 10 * time.Minute
	}
	if config.OTPDigits <= 0 {
		config.OTPDigits = 4
	}
	return &authServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tokenRepo:   tokenRepo,
		jwtService:  jwtService,
		mailer:      mailer,
		google:      verifier,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

var (
	errInvalidLogin = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password.")
	errInvalidOTP   = apperrors.NewCustomError(apperrors.ErrInvalidOTP, "Invalid or expired code.")
	errEmailTaken   = apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists.")
	errUnknownEmail = apperrors.NewBadRequestError("No account found with this email.")
)

// Register creates a user and its role profile in one transaction.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid role. Use Student, Intern or Company.")
	}
	if role == models.RoleAdmin {
		return nil, apperrors.NewValidationError("Admin accounts cannot be self-registered.")
	}

	var company *models.Company
	if role == models.RoleCompany {
		if req.CompanyName == nil || strings.TrimSpace(*req.CompanyName) == "" {
			return nil, apperrors.NewValidationError("Company name is required for company accounts.")
		}
		company = &models.Company{
			Name:     strings.TrimSpace(*req.CompanyName),
			Industry: models.DefaultIndustry,
		}
	}

	emailAddr := normalizeEmail(req.Email)
	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, errEmailTaken
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hashedPassword,
		Role:      role,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if company != nil {
		company.ContactEmail = emailAddr
	}

	userID, err := s.userRepo.CreateWithProfile(ctx, user, company)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, errEmailTaken
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Str("role", string(role)).Msg("User registered")
	return &dto.RegisterResponse{UserID: userID, Role: role.DisplayName()}, nil
}

// Login authenticates a user with email and password
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			auth.CheckPasswordDummy(req.Password)
			return nil, errInvalidLogin
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, errInvalidLogin
	}

	return s.loginResponse(ctx, user)
}

// GoogleLogin signs in with a Google access token, provisioning a student
// account on first use.
func (s *authServiceImpl) GoogleLogin(ctx context.Context, accessToken string) (*dto.LoginResponse, error) {
	identity, err := s.google.Verify(ctx, accessToken)
	if err != nil {
		if errors.Is(err, google.ErrRejected) {
			s.logger.Debug().Err(err).Msg("Google token rejected")
			return nil, apperrors.NewBadRequestError("Invalid Google token.")
		}
		return nil, apperrors.NewExternalServiceError("Google sign-in is currently unavailable.", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(identity.Email))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		user, err = s.provisionGoogleUser(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	return s.loginResponse(ctx, user)
}

func (s *authServiceImpl) provisionGoogleUser(ctx context.Context, identity *google.Identity) (*models.User, error) {
	placeholder, err := auth.RandomPassword()
	if err != nil {
		return nil, err
	}
	hashedPassword, err := auth.HashPassword(placeholder)
	if err != nil {
		return nil, err
	}

	firstName := identity.GivenName
	if firstName == "" {
		firstName = identity.Name
	}
	user := &models.User{
		Email:      normalizeEmail(identity.Email),
		Password:   hashedPassword,
		Role:       models.RoleStudent,
		FirstName:  firstName,
		LastName:   identity.FamilyName,
		IsVerified: true,
	}

	if _, err := s.userRepo.CreateWithProfile(ctx, user, nil); err != nil {
		// A concurrent first login may have created the account already.
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return s.userRepo.GetByEmail(ctx, user.Email)
		}
		return nil, fmt.Errorf("error provisioning google user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Provisioned user from Google sign-in")
	return user, nil
}

// ForgotPassword issues a reset code and mails it. The code stays stored
// even when delivery fails.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return errUnknownEmail
		}
		return fmt.Errorf("error finding user: %w", err)
	}

	code, err := auth.GenerateNumericCode(s.config.OTPDigits)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, s.now().Add(s.config.OTPTTL)); err != nil {
		return fmt.Errorf("error storing verification code: %w", err)
	}

	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, user.FullName(), code, s.config.OTPTTL); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to deliver password reset code")
		return apperrors.NewExternalServiceError("Failed to send the verification email. Please try again.", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset code sent")
	return nil
}

// VerifyOtp confirms a reset code. Unknown emails, wrong codes and expired
// codes all produce the same error.
func (s *authServiceImpl) VerifyOtp(ctx context.Context, emailAddr, code string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return errInvalidOTP
		}
		return fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CodeMatches(user.VerificationCode, user.OTPExpiry, strings.TrimSpace(code), s.now()) {
		return errInvalidOTP
	}
	return s.userRepo.MarkOTPVerified(ctx, user.ID)
}

// ResetPassword replaces the password of the account. With
// RequireVerifiedOTP the account must hold a verified, unexpired code.
func (s *authServiceImpl) ResetPassword(ctx context.Context, emailAddr, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return errUnknownEmail
		}
		return fmt.Errorf("error finding user: %w", err)
	}

	if s.config.RequireVerifiedOTP {
		if !user.OTPVerified || user.OTPExpiry == nil || !s.now().Before(*user.OTPExpiry) {
			return errInvalidOTP
		}
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if err := s.tokenRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to revoke refresh tokens after password reset")
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password reset")
	return nil
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokenRepo.ConsumeToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// Logout revokes a refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.DeleteToken(ctx, refreshToken)
}

func (s *authServiceImpl) loginResponse(ctx context.Context, user *models.User) (*dto.LoginResponse, error) {
	resp := &dto.LoginResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role.DisplayName(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if user.Role == models.RoleCompany {
		company, err := s.companyRepo.GetByContactEmail(ctx, user.Email)
		switch {
		case err == nil:
			resp.CompanyID = &company.ID
		case errors.Is(err, apperrors.ErrCompanyNotFound):
			s.logger.Warn().Int64("userID", user.ID).Msg("Company user has no company row")
		default:
			return nil, fmt.Errorf("error finding company: %w", err)
		}
	}

	token, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Token = *token
	return resp, nil
}

func (s *authServiceImpl) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	ttl := s.jwtService.RefreshTokenTTL()
	refreshToken, err := s.tokenRepo.CreateToken(ctx, user.ID, ttl)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: int64(ttl.Seconds()),
	}, nil
}
