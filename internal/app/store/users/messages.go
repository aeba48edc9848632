// internal/app/store/users/messages.go
package userstore

import (
	"context"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PushMessage appends a message to the recipient's embedded inbox in one
// update. Authorization (the active-connection rule for teacher messages)
// is enforced by the caller before this runs.
func (s *Store) PushMessage(ctx context.Context, recipientUID string, msg models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": recipientUID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMessages returns the user's inbox, newest first.
func (s *Store) ListMessages(ctx context.Context, uid string) ([]models.Message, error) {
	var doc struct {
		Messages []models.Message `bson:"messages"`
	}
	err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	msgs := doc.Messages
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MarkMessagesRead flags every unread message from fromUID as read.
func (s *Store) MarkMessagesRead(ctx context.Context, uid, fromUID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{
			"messages.$[m].read": true,
			"updated_at":         time.Now().UTC(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.from_uid": fromUID, "m.read": false}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount returns how many inbox messages are unread.
func (s *Store) UnreadCount(ctx context.Context, uid string) (int, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"uid": uid}}},
		{{Key: "$project", Value: bson.M{
			"unread": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$messages", bson.A{}}},
				"as":    "m",
				"cond":  bson.M{"$eq": bson.A{"$$m.read", false}},
			}}},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return 0, err
		}
		return 0, ErrNotFound
	}
	var row struct {
		Unread int `bson:"unread"`
	}
	if err := cur.Decode(&row); err != nil {
		return 0, err
	}
	return row.Unread, nil
}
