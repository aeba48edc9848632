// internal/domain/models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reader comment embedded in a blog post.
type Comment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserUID         string             `bson:"user_uid" json:"user_uid"`
	UserDisplayName string             `bson:"user_display_name" json:"user_display_name"`
	UserPhotoURL    string             `bson:"user_photo_url,omitempty" json:"user_photo_url,omitempty"`
	Content         string             `bson:"content" json:"content"`
	Likes           []string           `bson:"likes,omitempty" json:"likes,omitempty"` // user uids
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// Blog is a post in the community blog. Content is sanitized HTML; likes
// hold the uids of users who liked the post.
type Blog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	TitleCI        string             `bson:"title_ci" json:"-"`
	Slug           string             `bson:"slug" json:"slug"`
	Content        string             `bson:"content" json:"content"`
	AuthorUID      string             `bson:"author_uid" json:"author_uid"`
	AuthorName     string             `bson:"author_name" json:"author_name"`
	AuthorPhotoURL string             `bson:"author_photo_url,omitempty" json:"author_photo_url,omitempty"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	Likes          []string           `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments       []Comment          `bson:"comments,omitempty" json:"comments,omitempty"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
