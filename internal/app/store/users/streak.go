// internal/app/store/users/streak.go
package userstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TouchStudyStreak records study activity for today and maintains the
// consecutive-day counters. The whole decision runs inside one pipeline
// update so two activity events on the same day cannot double-count:
//
//	last study today      -> streak unchanged
//	last study yesterday  -> streak + 1
//	anything older        -> streak resets to 1
//
// longest_streak is folded in by the second stage, which sees the value
// the first stage just wrote.
func (s *Store) TouchStudyStreak(ctx context.Context, uid string) error {
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	yesterday := today.Add(-24 * time.Hour)

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"study_streak.current_streak": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{
						"case": bson.M{"$gte": bson.A{"$study_streak.last_study_date", today}},
						"then": "$study_streak.current_streak",
					},
					bson.M{
						"case": bson.M{"$gte": bson.A{"$study_streak.last_study_date", yesterday}},
						"then": bson.M{"$add": bson.A{"$study_streak.current_streak", 1}},
					},
				},
				"default": 1,
			}},
			"study_streak.last_study_date": now,
			"updated_at":                   now,
		}}},
		{{Key: "$set", Value: bson.M{
			"study_streak.longest_streak": bson.M{"$max": bson.A{
				bson.M{"$ifNull": bson.A{"$study_streak.longest_streak", 0}},
				"$study_streak.current_streak",
			}},
		}}},
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
