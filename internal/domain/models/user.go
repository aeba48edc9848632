// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection status values for a teacher/student link.
const (
	ConnectionActive   = "active"
	ConnectionInactive = "inactive"
	ConnectionBlocked  = "blocked"
)

// Connection is one side of a teacher↔student link. On a teacher account
// UID is the linked student's uid; on a student/advanced account UID is the
// linked teacher's uid. The link is written to both accounts when created.
type Connection struct {
	UID         string    `bson:"uid" json:"uid"`
	Status      string    `bson:"status" json:"status"`
	ConnectedAt time.Time `bson:"connected_at" json:"connected_at"`
}

// Message is a direct message stored on the recipient's account.
type Message struct {
	FromUID   string    `bson:"from_uid" json:"from_uid"`
	FromName  string    `bson:"from_name" json:"from_name"`
	Body      string    `bson:"body" json:"body"`
	Type      string    `bson:"type" json:"type"` // e.g. teacher_to_student
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ExamProgress tracks cumulative exam activity for a user. TotalExams feeds
// the automatic role upgrade check.
type ExamProgress struct {
	TotalExams     int     `bson:"total_exams" json:"total_exams"`
	CompletedExams int     `bson:"completed_exams" json:"completed_exams"`
	AverageScore   float64 `bson:"average_score" json:"average_score"`
}

// StudyStreak tracks consecutive study days.
type StudyStreak struct {
	CurrentStreak int       `bson:"current_streak" json:"current_streak"`
	LongestStreak int       `bson:"longest_streak" json:"longest_streak"`
	LastStudyDate time.Time `bson:"last_study_date" json:"last_study_date"`
}

// User represents any account: students, advanced students, teachers, admins.
//
// NOTE:
//   - UID is the opaque string identifier used in URLs and cross-references;
//     the Mongo ObjectID stays internal.
//   - Role is only changed through userstore.ApplyUpgrade / SetRole so the
//     derived IsAdmin flag is always recomputed with it.
//   - Connections and Messages are embedded arrays mutated only through
//     single filtered update operations (never read-then-save).
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID           string             `bson:"uid" json:"uid"`
	Email         string             `bson:"email" json:"email"`
	DisplayName   string             `bson:"display_name" json:"display_name"`
	DisplayNameCI string             `bson:"display_name_ci" json:"-"` // lowercase, diacritics-stripped
	PhotoURL      string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod    string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google

	Role    string `bson:"role" json:"role"` // guest | student | advanced | teacher | admin
	IsAdmin bool   `bson:"is_admin" json:"is_admin"`

	StudentID  string `bson:"student_id,omitempty" json:"student_id,omitempty"`
	SchoolName string `bson:"school_name,omitempty" json:"school_name,omitempty"`

	LastLogin  time.Time `bson:"last_login" json:"last_login"`
	LoginCount int       `bson:"login_count" json:"login_count"`

	ExamProgress ExamProgress `bson:"exam_progress" json:"exam_progress"`
	StudyStreak  StudyStreak  `bson:"study_streak" json:"study_streak"`

	Connections []Connection `bson:"connections,omitempty" json:"connections,omitempty"`
	Messages    []Message    `bson:"messages,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
