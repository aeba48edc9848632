// internal/domain/models/exam.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exam types offered by the tracker. "Custom" allows a free-form name.
var ExamTypes = []string{
	"SSC Final Exam",
	"Half Yearly",
	"9th Annual",
	"10th Progress Assessment",
	"SSC Pre-Test",
	"Custom",
}

// IsValidExamType reports whether t is one of the known exam types.
func IsValidExamType(t string) bool {
	for _, v := range ExamTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Todo is a single study task inside a subject.
type Todo struct {
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	IsCompleted bool      `bson:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Subject groups the todos for one subject of an exam and carries a
// 0–100 completion percentage derived from them.
type Subject struct {
	Name     string `bson:"name" json:"name"`
	Todos    []Todo `bson:"todos,omitempty" json:"todos,omitempty"`
	Progress int    `bson:"progress" json:"progress"`
}

// Exam is a tracked exam belonging to one user (scoped by UserUID).
type Exam struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserUID         string             `bson:"user_uid" json:"user_uid"`
	Name            string             `bson:"name" json:"name"`
	Type            string             `bson:"type" json:"type"`
	StartDate       time.Time          `bson:"start_date" json:"start_date"`
	EndDate         time.Time          `bson:"end_date" json:"end_date"`
	Subjects        []Subject          `bson:"subjects,omitempty" json:"subjects,omitempty"`
	OverallProgress int                `bson:"overall_progress" json:"overall_progress"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
