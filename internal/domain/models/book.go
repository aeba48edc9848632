// internal/domain/models/book.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book categories and grades in the study-material library.
var (
	BookCategories = []string{"Mathematics", "Science", "English", "Bengali", "History", "Geography", "Other"}
	BookGrades     = []string{"9th", "10th", "SSC"}
)

// IsValidBookCategory reports whether c is a known category.
func IsValidBookCategory(c string) bool {
	for _, v := range BookCategories {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidBookGrade reports whether g is a known grade.
func IsValidBookGrade(g string) bool {
	for _, v := range BookGrades {
		if v == g {
			return true
		}
	}
	return false
}

// Book is an uploaded study material (PDF) in the library.
type Book struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Author      string             `bson:"author" json:"author"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Grade       string             `bson:"grade" json:"grade"`

	PDFPath    string `bson:"pdf_path" json:"pdf_path"` // path within the file store
	CoverImage string `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	FileName   string `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize   int64  `bson:"file_size,omitempty" json:"file_size,omitempty"`

	Downloads int  `bson:"downloads" json:"downloads"`
	Views     int  `bson:"views" json:"views"`
	IsActive  bool `bson:"is_active" json:"is_active"`

	UploadedBy  string    `bson:"uploaded_by" json:"uploaded_by"` // uploader uid
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	ISBN        string    `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Publisher   string    `bson:"publisher,omitempty" json:"publisher,omitempty"`
	PublishYear int       `bson:"publish_year,omitempty" json:"publish_year,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
