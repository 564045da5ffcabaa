package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/repositories"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/auth"
	"github.com/skillpivot/api/internal/pkg/filestorage"
	"github.com/skillpivot/api/internal/pkg/google"
)

func init() {
	auth.BcryptCost = 4
}

// memoryDB mimics the tables with the same not-found, conflict and
// optimistic concurrency behavior as the PostgreSQL repositories.
type memoryDB struct {
	mu        sync.Mutex
	clock     time.Time
	nextID    int64
	users     map[int64]models.User
	companies map[int64]models.Company
	jobs      map[int64]models.JobPost
	apps      map[int64]models.JobApplication
	students  map[int64]models.Student

	failStudentInsert bool
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		clock:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		users:     map[int64]models.User{},
		companies: map[int64]models.Company{},
		jobs:      map[int64]models.JobPost{},
		apps:      map[int64]models.JobApplication{},
		students:  map[int64]models.Student{},
	}
}

func (db *memoryDB) tick() time.Time {
	db.clock = db.clock.Add(time.Millisecond)
	return db.clock
}

func (db *memoryDB) id() int64 {
	db.nextID++
	return db.nextID
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- users ---

type fakeUserStore struct{ db *memoryDB }

func (f *fakeUserStore) CreateWithProfile(ctx context.Context, user *models.User, company *models.Company) (int64, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	if user.Role == models.RoleStudent && db.failStudentInsert {
		return 0, fmt.Errorf("error creating student: insert failed")
	}

	now := db.tick()
	user.ID = db.id()
	user.CreatedAt, user.UpdatedAt = now, now
	db.users[user.ID] = *user

	switch user.Role {
	case models.RoleCompany:
		c := *company
		c.ID = db.id()
		c.RegisteredDate, c.UpdatedAt = now, now
		db.companies[c.ID] = c
		company.ID = c.ID
	case models.RoleStudent:
		s := models.Student{ID: db.id(), UserID: user.ID, UpdatedAt: now}
		db.students[s.ID] = s
	}
	return user.ID, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := f.GetByID(ctx, id)
	return err == nil, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.User{}
	for _, id := range sortedIDs(f.db.users) {
		u := f.db.users[id]
		out = append(out, &u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	current, ok := f.db.users[user.ID]
	if !ok || !current.UpdatedAt.Equal(user.UpdatedAt) {
		return apperrors.ErrConflict
	}
	for id, u := range f.db.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	current.FirstName, current.LastName, current.Email = user.FirstName, user.LastName, user.Email
	current.Location, current.Industry = user.Location, user.Industry
	current.UpdatedAt = f.db.tick()
	f.db.users[user.ID] = current
	user.UpdatedAt = current.UpdatedAt
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.db.users, id)
	for sid, s := range f.db.students {
		if s.UserID == id {
			delete(f.db.students, sid)
		}
	}
	return nil
}

func (f *fakeUserStore) mutate(id int64, fn func(u *models.User)) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = f.db.tick()
	f.db.users[id] = u
	return nil
}

func (f *fakeUserStore) SetOTP(ctx context.Context, id int64, code string, expiry time.Time) error {
	return f.mutate(id, func(u *models.User) {
		u.VerificationCode = &code
		u.OTPExpiry = &expiry
		u.OTPVerified = false
	})
}

func (f *fakeUserStore) MarkOTPVerified(ctx context.Context, id int64) error {
	return f.mutate(id, func(u *models.User) { u.OTPVerified = true })
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return f.mutate(id, func(u *models.User) {
		u.Password = passwordHash
		u.VerificationCode = nil
		u.OTPExpiry = nil
		u.OTPVerified = false
	})
}

func (f *fakeUserStore) UpdateProfilePicture(ctx context.Context, id int64, url string) error {
	return f.mutate(id, func(u *models.User) { u.ProfilePicture = &url })
}

// --- companies ---

type fakeCompanyStore struct{ db *memoryDB }

func (f *fakeCompanyStore) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.companies[id]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	return &c, nil
}

func (f *fakeCompanyStore) GetByContactEmail(ctx context.Context, email string) (*models.Company, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, id := range sortedIDs(f.db.companies) {
		if c := f.db.companies[id]; c.ContactEmail == email {
			return &c, nil
		}
	}
	return nil, apperrors.ErrCompanyNotFound
}

func (f *fakeCompanyStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := f.GetByID(ctx, id)
	return err == nil, nil
}

func (f *fakeCompanyStore) List(ctx context.Context) ([]*models.Company, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Company{}
	for _, id := range sortedIDs(f.db.companies) {
		c := f.db.companies[id]
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeCompanyStore) Update(ctx context.Context, company *models.Company) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	current, ok := f.db.companies[company.ID]
	if !ok || !current.UpdatedAt.Equal(company.UpdatedAt) {
		return apperrors.ErrConflict
	}
	updated := *company
	updated.IsVerified = current.IsVerified
	updated.RegisteredDate = current.RegisteredDate
	updated.LogoPath = current.LogoPath
	updated.UpdatedAt = f.db.tick()
	f.db.companies[company.ID] = updated
	company.UpdatedAt = updated.UpdatedAt
	return nil
}

func (f *fakeCompanyStore) mutate(id int64, fn func(c *models.Company)) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.companies[id]
	if !ok {
		return apperrors.ErrCompanyNotFound
	}
	fn(&c)
	c.UpdatedAt = f.db.tick()
	f.db.companies[id] = c
	return nil
}

func (f *fakeCompanyStore) SetVerified(ctx context.Context, id int64, verified bool) error {
	return f.mutate(id, func(c *models.Company) { c.IsVerified = verified })
}

func (f *fakeCompanyStore) UpdateLogo(ctx context.Context, id int64, url string) error {
	return f.mutate(id, func(c *models.Company) { c.LogoPath = &url })
}

// --- job posts ---

type fakeJobPostStore struct{ db *memoryDB }

func (f *fakeJobPostStore) Create(ctx context.Context, post *models.JobPost) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.companies[post.CompanyID]; !ok {
		return 0, apperrors.NewValidationError("Invalid CompanyId. The company does not exist.")
	}
	now := f.db.tick()
	post.ID = f.db.id()
	post.PostedDate, post.UpdatedAt = now, now
	f.db.jobs[post.ID] = *post
	return post.ID, nil
}

func (f *fakeJobPostStore) GetByID(ctx context.Context, id int64) (*models.JobPost, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobPostNotFound
	}
	return &p, nil
}

func (f *fakeJobPostStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := f.GetByID(ctx, id)
	return err == nil, nil
}

func (f *fakeJobPostStore) List(ctx context.Context) ([]*models.JobPost, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.JobPost{}
	for _, id := range sortedIDs(f.db.jobs) {
		p := f.db.jobs[id]
		out = append(out, &p)
	}
	return out, nil
}

func (f *fakeJobPostStore) ListWithCompany(ctx context.Context) ([]*models.JobPost, error) {
	posts, _ := f.List(ctx)
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range posts {
		c := f.db.companies[p.CompanyID]
		p.Company = &c
	}
	return posts, nil
}

func (f *fakeJobPostStore) Update(ctx context.Context, post *models.JobPost) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	current, ok := f.db.jobs[post.ID]
	if !ok || !current.UpdatedAt.Equal(post.UpdatedAt) {
		return apperrors.ErrConflict
	}
	updated := *post
	updated.PostedDate = current.PostedDate
	updated.CompanyID = current.CompanyID
	updated.UpdatedAt = f.db.tick()
	f.db.jobs[post.ID] = updated
	post.UpdatedAt = updated.UpdatedAt
	return nil
}

func (f *fakeJobPostStore) UpdateStatus(ctx context.Context, id int64, status models.JobPostStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.jobs[id]
	if !ok {
		return apperrors.ErrJobPostNotFound
	}
	p.Status = status
	p.UpdatedAt = f.db.tick()
	f.db.jobs[id] = p
	return nil
}

func (f *fakeJobPostStore) Delete(ctx context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.jobs[id]; !ok {
		return apperrors.ErrJobPostNotFound
	}
	delete(f.db.jobs, id)
	for aid, a := range f.db.apps {
		if a.JobPostID == id {
			delete(f.db.apps, aid)
		}
	}
	return nil
}

// --- applications ---

type fakeApplicationStore struct{ db *memoryDB }

func (f *fakeApplicationStore) Create(ctx context.Context, app *models.JobApplication) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	now := f.db.tick()
	app.ID = f.db.id()
	app.AppliedDate, app.UpdatedAt = now, now
	f.db.apps[app.ID] = *app
	return app.ID, nil
}

func (f *fakeApplicationStore) GetByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return &a, nil
}

func (f *fakeApplicationStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := f.GetByID(ctx, id)
	return err == nil, nil
}

func (f *fakeApplicationStore) ExistsForStudentAndJob(ctx context.Context, studentID, jobPostID int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, a := range f.db.apps {
		if a.StudentID == studentID && a.JobPostID == jobPostID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationStore) ListSummaries(ctx context.Context) ([]*models.ApplicationSummary, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.ApplicationSummary{}
	for _, id := range sortedIDs(f.db.apps) {
		a := f.db.apps[id]
		s := &models.ApplicationSummary{
			ApplicationID: a.ID,
			JobPostID:     a.JobPostID,
			StudentID:     a.StudentID,
			AppliedDate:   a.AppliedDate,
			Status:        a.Status,
		}
		if p, ok := f.db.jobs[a.JobPostID]; ok {
			title := p.Title
			s.JobTitle = &title
			if c, ok := f.db.companies[p.CompanyID]; ok {
				name := c.Name
				s.CompanyName = &name
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeApplicationStore) UpdateStatus(ctx context.Context, app *models.JobApplication) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	current, ok := f.db.apps[app.ID]
	if !ok || !current.UpdatedAt.Equal(app.UpdatedAt) {
		return apperrors.ErrConflict
	}
	current.Status = app.Status
	current.UpdatedAt = f.db.tick()
	f.db.apps[app.ID] = current
	app.UpdatedAt = current.UpdatedAt
	return nil
}

func (f *fakeApplicationStore) Delete(ctx context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.apps[id]; !ok {
		return apperrors.ErrApplicationNotFound
	}
	delete(f.db.apps, id)
	return nil
}

// --- students ---

type fakeStudentStore struct{ db *memoryDB }

func (f *fakeStudentStore) Create(ctx context.Context, student *models.Student) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.students {
		if s.UserID == student.UserID {
			return 0, apperrors.ErrStudentExists
		}
	}
	student.ID = f.db.id()
	student.UpdatedAt = f.db.tick()
	f.db.students[student.ID] = *student
	return student.ID, nil
}

func (f *fakeStudentStore) find(match func(s models.Student) bool) (*models.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, id := range sortedIDs(f.db.students) {
		if s := f.db.students[id]; match(s) {
			return &s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return f.find(func(s models.Student) bool { return s.UserID == userID })
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return f.find(func(s models.Student) bool { return s.ID == id })
}

func (f *fakeStudentStore) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	_, err := f.GetByUserID(ctx, userID)
	return err == nil, nil
}

func (f *fakeStudentStore) List(ctx context.Context) ([]*models.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Student{}
	for _, id := range sortedIDs(f.db.students) {
		s := f.db.students[id]
		out = append(out, &s)
	}
	return out, nil
}

func (f *fakeStudentStore) Update(ctx context.Context, student *models.Student) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	current, ok := f.db.students[student.ID]
	if !ok || !current.UpdatedAt.Equal(student.UpdatedAt) {
		return apperrors.ErrConflict
	}
	updated := *student
	updated.IsVerified = current.IsVerified
	updated.UpdatedAt = f.db.tick()
	f.db.students[student.ID] = updated
	student.UpdatedAt = updated.UpdatedAt
	return nil
}

func (f *fakeStudentStore) mutateByUser(userID int64, fn func(s *models.Student)) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, s := range f.db.students {
		if s.UserID == userID {
			fn(&s)
			s.UpdatedAt = f.db.tick()
			f.db.students[id] = s
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) SetVerified(ctx context.Context, userID int64, verified bool) error {
	return f.mutateByUser(userID, func(s *models.Student) { s.IsVerified = verified })
}

func (f *fakeStudentStore) UpdateNicDocument(ctx context.Context, userID int64, url string) error {
	return f.mutateByUser(userID, func(s *models.Student) { s.NicDocumentPath = url })
}

// --- collaborators ---

type fakeMailer struct {
	mu       sync.Mutex
	err      error
	to       string
	code     string
	validFor time.Duration
	sent     int
}

func (m *fakeMailer) SendPasswordResetCode(ctx context.Context, toEmail, toName, code string, validFor time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.code, m.validFor = toEmail, code, validFor
	m.sent++
	return m.err
}

type fakeVerifier struct {
	identities map[string]*google.Identity
	err        error
}

func (v *fakeVerifier) Verify(ctx context.Context, accessToken string) (*google.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	id, ok := v.identities[accessToken]
	if !ok {
		return nil, google.ErrRejected
	}
	return id, nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	seq     int
	stored  []string
	deleted []string
}

func (b *fakeBlobStore) Store(ctx context.Context, category filestorage.Category, ownerID int64, fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", apperrors.NewCustomError(apperrors.ErrEmptyFile, "No file uploaded.")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	url := fmt.Sprintf("/uploads/%s/%d_%s_%d", category, ownerID, category, b.seq)
	b.stored = append(b.stored, url)
	return url, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, fileURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, fileURL)
	return nil
}

// --- wiring ---

type testEnv struct {
	db        *memoryDB
	users     *fakeUserStore
	companies *fakeCompanyStore
	jobs      *fakeJobPostStore
	apps      *fakeApplicationStore
	students  *fakeStudentStore
	tokens    *repositories.TokenRepository
	mailer    *fakeMailer
	verifier  *fakeVerifier
	blobs     *fakeBlobStore
	jwt       *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := newMemoryDB()
	return &testEnv{
		db:        db,
		users:     &fakeUserStore{db: db},
		companies: &fakeCompanyStore{db: db},
		jobs:      &fakeJobPostStore{db: db},
		apps:      &fakeApplicationStore{db: db},
		students:  &fakeStudentStore{db: db},
		tokens:    repositories.NewTokenRepository(client),
		mailer:    &fakeMailer{},
		verifier:  &fakeVerifier{identities: map[string]*google.Identity{}},
		blobs:     &fakeBlobStore{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "skillpivot-test",
		}),
	}
}

func (e *testEnv) authService(cfg AuthConfig) *authServiceImpl {
	svc := NewAuthService(e.users, e.companies, e.tokens, e.jwt, e.mailer, e.verifier, cfg, zerolog.Nop())
	return svc.(*authServiceImpl)
}
