// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Record appends a login record for the user.
func (s *Store) Record(ctx context.Context, rec models.LoginRecord) error {
	rec.ID = primitive.NewObjectID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// RecentForUser returns the user's most recent logins, newest first.
func (s *Store) RecentForUser(ctx context.Context, uid string, limit int64) ([]models.LoginRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	cur, err := s.c.Find(ctx,
		bson.M{"user_uid": uid},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []models.LoginRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CountSince returns how many logins happened at or after the cutoff,
// across all users. Used by the admin analytics view.
func (s *Store) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": cutoff}})
}

// ActiveUsersSince returns the number of distinct users who logged in at or
// after the cutoff.
func (s *Store) ActiveUsersSince(ctx context.Context, cutoff time.Time) (int64, error) {
	uids, err := s.c.Distinct(ctx, "user_uid", bson.M{"created_at": bson.M{"$gte": cutoff}})
	if err != nil {
		return 0, err
	}
	return int64(len(uids)), nil
}
