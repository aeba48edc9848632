// internal/app/store/blogs/blogstore.go
package blogstore

import (
	"context"
	"errors"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no post matches the lookup.
	ErrNotFound = errors.New("blog post not found")
	// ErrDuplicateSlug is returned when a post with the same slug exists.
	ErrDuplicateSlug = errors.New("a post with this slug already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("blogs")}
}

// Create inserts a new post. The caller has already sanitized the content
// and derived the slug.
func (s *Store) Create(ctx context.Context, blog models.Blog) (models.Blog, error) {
	blog.ID = primitive.NewObjectID()
	blog.TitleCI = text.Fold(blog.Title)
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, blog); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Blog{}, ErrDuplicateSlug
		}
		return models.Blog{}, err
	}
	return blog, nil
}

// GetBySlug loads a post by slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&blog); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

// List returns posts newest first, optionally filtered by tag.
func (s *Store) List(ctx context.Context, tag string, limit, offset int64) ([]models.Blog, error) {
	filter := bson.M{}
	if tag != "" {
		filter["tags"] = tag
	}
	if limit <= 0 {
		limit = 20
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var blogs []models.Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// ListByAuthor returns the author's posts newest first.
func (s *Store) ListByAuthor(ctx context.Context, authorUID string) ([]models.Blog, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"author_uid": authorUID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var blogs []models.Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// UpdateForAuthor updates the mutable fields of a post if authorUID owns it.
func (s *Store) UpdateForAuthor(ctx context.Context, authorUID, slug string, title, content string, tags []string) (*models.Blog, error) {
	var updated models.Blog
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"slug": slug, "author_uid": authorUID},
		bson.M{"$set": bson.M{
			"title":      title,
			"title_ci":   text.Fold(title),
			"content":    content,
			"tags":       tags,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// ToggleLike adds the user's like if absent or removes it if present, in a
// single update each way. $addToSet makes a double-like impossible even
// when two requests race.
func (s *Store) ToggleLike(ctx context.Context, slug, userUID string) (liked bool, likes int, err error) {
	// Try to add first. If nothing changed the like already existed, so
	// remove it instead.
	var after models.Blog
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"slug": slug, "likes": bson.M{"$ne": userUID}},
		bson.M{"$addToSet": bson.M{"likes": userUID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err == nil {
		return true, len(after.Likes), nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, err
	}

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"slug": slug},
		bson.M{"$pull": bson.M{"likes": userUID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}
	return false, len(after.Likes), nil
}

// AddComment appends a comment to the post.
func (s *Store) AddComment(ctx context.Context, slug string, comment models.Comment) (models.Comment, error) {
	comment.ID = primitive.NewObjectID()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"slug": slug},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return models.Comment{}, err
	}
	if res.MatchedCount == 0 {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

// Delete removes a post. The filter optionally restricts to an author:
// pass an empty authorUID to delete as a moderator.
func (s *Store) Delete(ctx context.Context, slug, authorUID string) error {
	filter := bson.M{"slug": slug}
	if authorUID != "" {
		filter["author_uid"] = authorUID
	}
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of posts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
