// internal/app/store/books/bookstore.go
package bookstore

import (
	"context"
	"errors"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no book matches the lookup.
var ErrNotFound = errors.New("book not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("books")}
}

// Create inserts a new book record after the file has been stored.
func (s *Store) Create(ctx context.Context, book models.Book) (models.Book, error) {
	book.ID = primitive.NewObjectID()
	book.TitleCI = text.Fold(book.Title)
	book.IsActive = true
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, book); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// Get loads an active book by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListFilter narrows the library listing.
type ListFilter struct {
	Category string
	Grade    string
	Search   string
	Limit    int64
	Offset   int64
}

// List returns active books, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Book, error) {
	filter := bson.M{"is_active": true}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Grade != "" {
		filter["grade"] = f.Grade
	}
	if f.Search != "" {
		filter["title_ci"] = bson.M{"$regex": primitive.Regex{Pattern: text.Fold(f.Search)}}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// IncDownloads bumps the download counter and returns the book so the
// caller can stream the file. One update, no read-then-write.
func (s *Store) IncDownloads(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$inc": bson.M{"downloads": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// IncViews bumps the view counter.
func (s *Store) IncViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a book, keeping the record for bookkeeping. The
// stored file is removed separately by the caller.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Count returns the number of active books.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_active": true})
}
