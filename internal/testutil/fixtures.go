package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given name, email, and role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		UID:           "user_" + uuid.NewString(),
		Email:         email,
		DisplayName:   name,
		DisplayNameCI: text.Fold(name),
		AuthMethod:    "password",
		Role:          role,
		IsAdmin:       role == "admin",
		LastLogin:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateStudent inserts a test user with the student role.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, "student")
}

// CreateTeacher inserts a test user with the teacher role.
func (f *Fixtures) CreateTeacher(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, "teacher")
}

// CreateAdmin inserts a test user with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, "admin")
}

// CreateUserWithCounters inserts a student with specific login and exam
// counters, for exercising the automatic upgrade path.
func (f *Fixtures) CreateUserWithCounters(ctx context.Context, name, email string, logins, totalExams int) models.User {
	f.t.Helper()

	user := f.CreateStudent(ctx, name, email)
	_, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]any{"uid": user.UID},
		map[string]any{"$set": map[string]any{
			"login_count":               logins,
			"exam_progress.total_exams": totalExams,
		}},
	)
	if err != nil {
		f.t.Fatalf("failed to set counters: %v", err)
	}
	user.LoginCount = logins
	user.ExamProgress.TotalExams = totalExams
	return user
}

// CreateExam inserts a test exam owned by ownerUID.
func (f *Fixtures) CreateExam(ctx context.Context, ownerUID, name, examType string) models.Exam {
	f.t.Helper()

	now := time.Now().UTC()
	exam := models.Exam{
		ID:        primitive.NewObjectID(),
		UserUID:   ownerUID,
		Name:      name,
		Type:      examType,
		StartDate: now.AddDate(0, 0, 14),
		EndDate:   now.AddDate(0, 0, 21),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("exams").InsertOne(ctx, exam); err != nil {
		f.t.Fatalf("failed to create test exam: %v", err)
	}
	return exam
}

// CreateBlog inserts a test blog post authored by authorUID.
func (f *Fixtures) CreateBlog(ctx context.Context, authorUID, authorName, title string) models.Blog {
	f.t.Helper()

	now := time.Now().UTC()
	blog := models.Blog{
		ID:         primitive.NewObjectID(),
		Slug:       text.Fold(title),
		Title:      title,
		TitleCI:    text.Fold(title),
		Content:    "test content",
		AuthorUID:  authorUID,
		AuthorName: authorName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("blogs").InsertOne(ctx, blog); err != nil {
		f.t.Fatalf("failed to create test blog: %v", err)
	}
	return blog
}

// CreateBook inserts a test book record.
func (f *Fixtures) CreateBook(ctx context.Context, title, category, grade string) models.Book {
	f.t.Helper()

	now := time.Now().UTC()
	book := models.Book{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Category:  category,
		Grade:     grade,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("books").InsertOne(ctx, book); err != nil {
		f.t.Fatalf("failed to create test book: %v", err)
	}
	return book
}
