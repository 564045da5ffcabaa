package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/google"
)

func strPtr(s string) *string { return &s }

func defaultAuthConfig() AuthConfig {
	return AuthConfig{OTPTTL: 10 * time.Minute, OTPDigits: 4, RequireVerifiedOTP: true}
}

func TestRegisterCreatesCompanionProfileByRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	tests := []struct {
		name          string
		req           dto.RegisterRequest
		wantRole      string
		wantCompanies int
		wantStudents  int
	}{
		{
			name:          "company",
			req:           dto.RegisterRequest{Email: "hr@acme.io", Password: "password1", Role: "Company", FirstName: "Ann", LastName: "Lee", CompanyName: strPtr("Acme")},
			wantRole:      "Company",
			wantCompanies: 1,
		},
		{
			name:         "intern alias",
			req:          dto.RegisterRequest{Email: "kamal@uni.lk", Password: "password1", Role: "Internship Seekers", FirstName: "Kamal", LastName: "Silva"},
			wantRole:     "Intern",
			wantStudents: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			companiesBefore, studentsBefore := len(env.db.companies), len(env.db.students)
			resp, err := svc.Register(ctx, &tt.req)
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if resp.Role != tt.wantRole || resp.UserID == 0 {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if got := len(env.db.companies) - companiesBefore; got != tt.wantCompanies {
				t.Fatalf("expected %d new companies, got %d", tt.wantCompanies, got)
			}
			if got := len(env.db.students) - studentsBefore; got != tt.wantStudents {
				t.Fatalf("expected %d new students, got %d", tt.wantStudents, got)
			}
			user := env.db.users[resp.UserID]
			if user.Password == tt.req.Password {
				t.Fatalf("password stored in plaintext")
			}
		})
	}
}

func TestRegisterRejectsDuplicatesAndInvalidRoles(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	req := &dto.RegisterRequest{Email: "a@x.com", Password: "password1", Role: "student", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}

	dup := *req
	dup.Email = "  A@X.com "
	if _, err := svc.Register(ctx, &dup); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("expected email conflict, got %v", err)
	}

	admin := *req
	admin.Email, admin.Role = "root@x.com", "Admin"
	if _, err := svc.Register(ctx, &admin); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected admin self-registration to fail validation, got %v", err)
	}

	unknown := *req
	unknown.Email, unknown.Role = "who@x.com", "janitor"
	if _, err := svc.Register(ctx, &unknown); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected unknown role to fail validation, got %v", err)
	}

	noName := *req
	noName.Email, noName.Role, noName.CompanyName = "co@x.com", "Company", strPtr("  ")
	if _, err := svc.Register(ctx, &noName); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected missing company name to fail validation, got %v", err)
	}

	long := *req
	long.Email, long.Password = "long@x.com", strings.Repeat("a", 73)
	if _, err := svc.Register(ctx, &long); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected overlong password to fail validation, got %v", err)
	}
}

func TestRegisterIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	env.db.failStudentInsert = true
	svc := env.authService(defaultAuthConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "s@x.com", Password: "password1", Role: "Student", FirstName: "S", LastName: "T",
	})
	if err == nil {
		t.Fatalf("expected registration to fail")
	}
	if len(env.db.users) != 0 {
		t.Fatalf("user row must not survive a failed profile insert")
	}
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "intern@x.com", Password: "password1", Role: "Intern", FirstName: "I", LastName: "N",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "intern@x.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != "Intern" || resp.CompanyID != nil {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	if resp.Token.AccessToken == "" || resp.Token.RefreshToken == "" || resp.Token.TokenType != "Bearer" {
		t.Fatalf("expected a token pair, got %+v", resp.Token)
	}

	_, wrongPassword := svc.Login(ctx, &dto.LoginRequest{Email: "intern@x.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@x.com", Password: "password1"})
	for _, err := range []error{wrongPassword, unknownEmail} {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestGoogleLoginProvisionsStudentOnce(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.identities["good"] = &google.Identity{Email: "nimal@gmail.com", EmailVerified: true, GivenName: "Nimal", FamilyName: "Perera"}
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	first, err := svc.GoogleLogin(ctx, "good")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if first.Role != "Intern" || first.FirstName != "Nimal" {
		t.Fatalf("unexpected response: %+v", first)
	}
	user := env.db.users[first.UserID]
	if !user.IsVerified || user.Role != models.RoleStudent {
		t.Fatalf("expected verified student, got %+v", user)
	}
	if len(env.db.students) != 1 {
		t.Fatalf("expected a student profile, got %d", len(env.db.students))
	}

	second, err := svc.GoogleLogin(ctx, "good")
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if second.UserID != first.UserID || len(env.db.users) != 1 {
		t.Fatalf("expected the same account to be reused")
	}

	if _, err := svc.GoogleLogin(ctx, "bad"); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request for rejected token, got %v", err)
	}

	env.verifier.err = errors.New("network down")
	if _, err := svc.GoogleLogin(ctx, "good"); !errors.Is(err, apperrors.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "r@x.com", Password: "password1", Role: "Student", FirstName: "R", LastName: "X",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "r@x.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "nobody@x.com"); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request for unknown email, got %v", err)
	}

	// Reset without a verified code is refused.
	if err := svc.ResetPassword(ctx, "r@x.com", "newpassword1"); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Fatalf("expected reset to require a verified code, got %v", err)
	}

	if err := svc.ForgotPassword(ctx, "r@x.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	code := env.mailer.code
	if len(code) != 4 || env.mailer.to != "r@x.com" || env.mailer.validFor != 10*time.Minute {
		t.Fatalf("unexpected mail: to=%q code=%q validFor=%s", env.mailer.to, code, env.mailer.validFor)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q is not numeric", code)
		}
	}

	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	if err := svc.VerifyOtp(ctx, "r@x.com", wrong); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Fatalf("expected wrong code to fail, got %v", err)
	}
	if err := svc.VerifyOtp(ctx, "ghost@x.com", code); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Fatalf("expected unknown email to fail like a wrong code, got %v", err)
	}

	now = now.Add(9*time.Minute + 59*time.Second)
	if err := svc.VerifyOtp(ctx, "r@x.com", code); err != nil {
		t.Fatalf("verify otp inside window: %v", err)
	}
	if err := svc.ResetPassword(ctx, "r@x.com", "newpassword1"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "r@x.com", Password: "newpassword1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, login.Token.RefreshToken); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("expected refresh tokens to be revoked by the reset, got %v", err)
	}
	user, _ := env.users.GetByEmail(ctx, "r@x.com")
	if user.VerificationCode != nil || user.OTPExpiry != nil || user.OTPVerified {
		t.Fatalf("expected otp state to be cleared: %+v", user)
	}
}

func TestVerifyOtpExpiresAfterTenMinutes(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "late@x.com", Password: "password1", Role: "Student", FirstName: "L", LastName: "T",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "late@x.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	now = now.Add(10*time.Minute + time.Second)
	if err := svc.VerifyOtp(ctx, "late@x.com", env.mailer.code); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Fatalf("expected expired code to fail, got %v", err)
	}
}

func TestForgotPasswordKeepsCodeWhenMailFails(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("smtp unavailable")
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "m@x.com", Password: "password1", Role: "Student", FirstName: "M", LastName: "X",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "m@x.com"); !errors.Is(err, apperrors.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if err := svc.VerifyOtp(ctx, "m@x.com", env.mailer.code); err != nil {
		t.Fatalf("code should still verify after failed delivery: %v", err)
	}
}

func TestResetPasswordWithoutVerificationWhenDisabled(t *testing.T) {
	env := newTestEnv(t)
	cfg := defaultAuthConfig()
	cfg.RequireVerifiedOTP = false
	svc := env.authService(cfg)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "o@x.com", Password: "password1", Role: "Student", FirstName: "O", LastName: "X",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ResetPassword(ctx, "o@x.com", "password2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := svc.ResetPassword(ctx, "ghost@x.com", "password2"); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request for unknown email, got %v", err)
	}
}

func TestRefreshTokenRotatesAndLogoutRevokes(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(defaultAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "t@x.com", Password: "password1", Role: "Student", FirstName: "T", LastName: "X",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "t@x.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.RefreshToken(ctx, login.Token.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == login.Token.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}
	if _, err := svc.RefreshToken(ctx, login.Token.RefreshToken); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("expected old refresh token to be spent, got %v", err)
	}

	if err := svc.Logout(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, rotated.RefreshToken); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("expected logged out token to be rejected, got %v", err)
	}
}
