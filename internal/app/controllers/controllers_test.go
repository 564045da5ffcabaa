package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/app/services"
	"github.com/skillpivot/api/internal/middleware"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Stubs embed the service interface; calling a method a test did not set up
// panics, which fails the test.

type stubAuthService struct {
	services.AuthService
	register func(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	login    func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return s.register(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.login(ctx, req)
}

type stubUserService struct {
	services.UserService
	getUser        func(ctx context.Context, id int64) (*models.User, error)
	updateUser     func(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	upload         func(ctx context.Context, id int64, file *multipart.FileHeader) (string, error)
	changePassword func(ctx context.Context, req *dto.ChangePasswordRequest) error
}

func (s *stubUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, id)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	return s.updateUser(ctx, id, req)
}

func (s *stubUserService) UploadProfilePicture(ctx context.Context, id int64, file *multipart.FileHeader) (string, error) {
	return s.upload(ctx, id, file)
}

func (s *stubUserService) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	return s.changePassword(ctx, req)
}

type stubJobPostService struct {
	services.JobPostService
	create func(ctx context.Context, req *dto.CreateJobPostRequest) (int64, error)
	remove func(ctx context.Context, id int64) error
}

func (s *stubJobPostService) CreateJobPost(ctx context.Context, req *dto.CreateJobPostRequest) (int64, error) {
	return s.create(ctx, req)
}

func (s *stubJobPostService) DeleteJobPost(ctx context.Context, id int64) error {
	return s.remove(ctx, id)
}

type stubAdminService struct {
	services.AdminService
	verifyCompany func(ctx context.Context, id int64) error
}

func (s *stubAdminService) VerifyCompany(ctx context.Context, id int64) error {
	return s.verifyCompany(ctx, id)
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func perform(t *testing.T, router *gin.Engine, method, path string, body interface{}, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestRegisterReturnsAcknowledgment(t *testing.T) {
	authSvc := &stubAuthService{
		register: func(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
			if req.Email == "taken@x.com" {
				return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists.")
			}
			return &dto.RegisterResponse{UserID: 5, Role: "Intern"}, nil
		},
	}
	ctrl := NewAuthController(authSvc, zerolog.Nop())
	router := gin.New()
	router.POST("/register", ctrl.Register)

	body := map[string]string{"email": "new@x.com", "password": "password1", "role": "Intern", "firstName": "N", "lastName": "W"}
	rec, env := perform(t, router, http.MethodPost, "/register", body, nil)
	if rec.Code != http.StatusOK || !env.Success || env.Message == "" {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
	var data dto.RegisterResponse
	if err := json.Unmarshal(env.Data, &data); err != nil || data.UserID != 5 || data.Role != "Intern" {
		t.Fatalf("unexpected data: %s", env.Data)
	}

	body["email"] = "taken@x.com"
	rec, env = perform(t, router, http.MethodPost, "/register", body, nil)
	if rec.Code != http.StatusConflict || env.Error == nil || env.Error.Code != dto.ErrorCodeResourceAlreadyExists {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = perform(t, router, http.MethodPost, "/register", map[string]string{"email": "not-an-email"}, nil)
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.ErrorCodeValidationFailed {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body["email"] = "long@x.com"
	body["password"] = strings.Repeat("a", 73)
	rec, env = perform(t, router, http.MethodPost, "/register", body, nil)
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.ErrorCodeValidationFailed {
		t.Fatalf("expected 400 for a 73-byte password, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = perform(t, router, http.MethodPost, "/register", "{not json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestLoginFailureIsUnauthorized(t *testing.T) {
	authSvc := &stubAuthService{
		login: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password.")
		},
	}
	router := gin.New()
	router.POST("/login", NewAuthController(authSvc, zerolog.Nop()).Login)

	rec, env := perform(t, router, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "x"}, nil)
	if rec.Code != http.StatusUnauthorized || env.Error.Message != "Invalid email or password." {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserController(t *testing.T) {
	userSvc := &stubUserService{
		getUser: func(ctx context.Context, id int64) (*models.User, error) {
			if id == 1 {
				return &models.User{ID: 1, Email: "a@x.com", Role: models.RoleStudent, Password: "hash"}, nil
			}
			return nil, apperrors.ErrUserNotFound
		},
		updateUser: func(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
			if req.UserID != id {
				return nil, apperrors.NewBadRequestError("User ID mismatch.")
			}
			return &models.User{ID: id, Email: req.Email}, nil
		},
	}
	ctrl := NewUserController(userSvc, zerolog.Nop())
	router := gin.New()
	router.GET("/users/:id", ctrl.GetUser)
	router.PUT("/users/:id", ctrl.UpdateUser)

	rec, env := perform(t, router, http.MethodGet, "/users/1", nil, nil)
	if rec.Code != http.StatusOK || strings.Contains(string(env.Data), "hash") {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = perform(t, router, http.MethodGet, "/users/2", nil, nil)
	if rec.Code != http.StatusNotFound || env.Error.Message != "User profile not found." {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = perform(t, router, http.MethodGet, "/users/abc", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	update := map[string]interface{}{"userId": 3, "firstName": "A", "lastName": "B", "email": "a@x.com"}
	rec, env = perform(t, router, http.MethodPut, "/users/1", update, nil)
	if rec.Code != http.StatusBadRequest || env.Error.Message != "User ID mismatch." {
		t.Fatalf("expected mismatch 400, got %d: %s", rec.Code, rec.Body.String())
	}

	update["userId"] = 1
	rec, env = perform(t, router, http.MethodPut, "/users/1", update, nil)
	if rec.Code != http.StatusOK || env.Message != "Profile updated successfully!" {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadWithoutFileReachesService(t *testing.T) {
	var gotNil bool
	userSvc := &stubUserService{
		upload: func(ctx context.Context, id int64, file *multipart.FileHeader) (string, error) {
			gotNil = file == nil
			if file == nil {
				return "", apperrors.NewCustomError(apperrors.ErrEmptyFile, "No file uploaded.")
			}
			return "/uploads/1_profile_x.png", nil
		},
	}
	router := gin.New()
	router.POST("/users/upload-image/:id", NewUserController(userSvc, zerolog.Nop()).UploadProfilePicture)

	rec, env := perform(t, router, http.MethodPost, "/users/upload-image/1", nil, nil)
	if !gotNil || rec.Code != http.StatusBadRequest || env.Error.Code != dto.ErrorCodeEmptyFile {
		t.Fatalf("expected empty file 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "me.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write([]byte("png"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/users/upload-image/1", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"url":"/uploads/1_profile_x.png"`) {
		t.Fatalf("expected url in response, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChangePasswordRequiresSameUserOrAdmin(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey: "controller-secret", AccessTokenExp: time.Minute, RefreshTokenExp: time.Hour, TokenIssuer: "test",
	})
	calls := 0
	userSvc := &stubUserService{
		changePassword: func(ctx context.Context, req *dto.ChangePasswordRequest) error {
			calls++
			return nil
		},
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	router := gin.New()
	router.POST("/change-password", authMiddleware.JWTAuth(), NewUserController(userSvc, zerolog.Nop()).ChangePassword)

	tokenFor := func(id int64, role models.Role) map[string]string {
		token, _, err := jwtService.GenerateAccessToken(&models.User{ID: id, Email: "u@x.com", Role: role})
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return map[string]string{"Authorization": "Bearer " + token}
	}
	body := map[string]interface{}{"userId": 7, "currentPassword": "password1", "newPassword": "password2"}

	if rec, _ := perform(t, router, http.MethodPost, "/change-password", body, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec, _ := perform(t, router, http.MethodPost, "/change-password", body, tokenFor(8, models.RoleStudent)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", rec.Code)
	}
	if rec, _ := perform(t, router, http.MethodPost, "/change-password", body, tokenFor(7, models.RoleStudent)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the owner, got %d", rec.Code)
	}
	if rec, _ := perform(t, router, http.MethodPost, "/change-password", body, tokenFor(1, models.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an admin, got %d", rec.Code)
	}
	if calls != 2 {
		t.Fatalf("expected 2 service calls, got %d", calls)
	}
}

func TestJobPostController(t *testing.T) {
	jobSvc := &stubJobPostService{
		create: func(ctx context.Context, req *dto.CreateJobPostRequest) (int64, error) {
			if req.CompanyID == 99 {
				return 0, apperrors.NewValidationError("Invalid CompanyId. The company does not exist.")
			}
			return 4, nil
		},
		remove: func(ctx context.Context, id int64) error {
			return apperrors.ErrJobPostNotFound
		},
	}
	ctrl := NewJobPostController(jobSvc, zerolog.Nop())
	router := gin.New()
	router.POST("/jobposts", ctrl.CreateJobPost)
	router.DELETE("/jobposts/:id", ctrl.DeleteJobPost)

	body := map[string]interface{}{"jobTitle": "Go Intern", "description": "d", "companyId": 1}
	rec, env := perform(t, router, http.MethodPost, "/jobposts", body, nil)
	if rec.Code != http.StatusCreated || env.Message != "Internship Posted Successfully!" || !strings.Contains(string(env.Data), `"jobId":4`) {
		t.Fatalf("unexpected create response %d: %s", rec.Code, rec.Body.String())
	}

	body["companyId"] = 99
	rec, env = perform(t, router, http.MethodPost, "/jobposts", body, nil)
	if rec.Code != http.StatusBadRequest || env.Error.Message != "Invalid CompanyId. The company does not exist." {
		t.Fatalf("expected 400 for unknown company, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = perform(t, router, http.MethodDelete, "/jobposts/12", nil, nil)
	if rec.Code != http.StatusNotFound || env.Error.Message != "Job not found." {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminVerifyCompany(t *testing.T) {
	adminSvc := &stubAdminService{
		verifyCompany: func(ctx context.Context, id int64) error {
			if id != 3 {
				return apperrors.ErrCompanyNotFound
			}
			return nil
		},
	}
	router := gin.New()
	router.PUT("/verify-company/:id", NewAdminController(adminSvc, zerolog.Nop()).VerifyCompany)

	rec, env := perform(t, router, http.MethodPut, "/verify-company/3", nil, nil)
	if rec.Code != http.StatusOK || env.Message != "Company verified successfully!" {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
	rec, env = perform(t, router, http.MethodPut, "/verify-company/4", nil, nil)
	if rec.Code != http.StatusNotFound || env.Error.Message != "Verification failed: Company record not found." {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	router := gin.New()
	healthy := NewHealthController(map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})
	degraded := NewHealthController(map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return context.DeadlineExceeded },
	})
	router.GET("/ok", healthy.Health)
	router.GET("/degraded", degraded.Health)

	if rec, env := perform(t, router, http.MethodGet, "/ok", nil, nil); rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("expected healthy, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, env := perform(t, router, http.MethodGet, "/degraded", nil, nil)
	if rec.Code != http.StatusServiceUnavailable || env.Success || !strings.Contains(string(env.Data), `"redis":"down"`) {
		t.Fatalf("expected degraded, got %d: %s", rec.Code, rec.Body.String())
	}
}
