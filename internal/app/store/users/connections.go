// internal/app/store/users/connections.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrAlreadyConnected is returned by AddConnection when the pair is already
// linked on this account. Callers treat it as a benign outcome, not a
// failure: the connect operation is idempotent per pair.
var ErrAlreadyConnected = errors.New("connection already exists")

// AddConnection appends a connection entry to one side of a teacher/student
// link. The filter excludes documents that already carry an entry for the
// peer, so two racing connect requests cannot produce a duplicate: the
// loser matches nothing and reports ErrAlreadyConnected.
func (s *Store) AddConnection(ctx context.Context, uid, peerUID string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "connections.uid": bson.M{"$ne": peerUID}},
		bson.M{
			"$push": bson.M{"connections": models.Connection{
				UID:         peerUID,
				Status:      models.ConnectionActive,
				ConnectedAt: now,
			}},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the user is missing or the connection already exists.
		// Distinguish with a point lookup so callers get the right signal.
		if _, lookErr := s.GetByUID(ctx, uid); lookErr != nil {
			return lookErr
		}
		return ErrAlreadyConnected
	}
	return nil
}

// UpdateConnectionStatus changes the status of an existing link entry.
func (s *Store) UpdateConnectionStatus(ctx context.Context, uid, peerUID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "connections.uid": peerUID},
		bson.M{"$set": bson.M{
			"connections.$.status": status,
			"updated_at":           time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveConnection deletes the link entry for peerUID from this account.
func (s *Store) RemoveConnection(ctx context.Context, uid, peerUID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{
			"$pull": bson.M{"connections": bson.M{"uid": peerUID}},
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

// HasActiveConnection reports whether uid carries an active link to peerUID.
func (s *Store) HasActiveConnection(ctx context.Context, uid, peerUID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"uid": uid,
		"connections": bson.M{"$elemMatch": bson.M{
			"uid":    peerUID,
			"status": models.ConnectionActive,
		}},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
