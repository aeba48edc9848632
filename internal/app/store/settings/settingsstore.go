// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The site settings live in a single document keyed by a fixed id. Every
// instance of the service reads and writes the same document, so an admin
// change is visible to all instances on their next read. Nothing is cached
// in process memory.
const settingsKey = "site"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_settings")}
}

// Get returns the current settings, falling back to the factory defaults
// when no document has been saved yet.
func (s *Store) Get(ctx context.Context) (models.SiteSettings, error) {
	var doc struct {
		models.SiteSettings `bson:",inline"`
		Key                 string `bson:"key"`
	}
	err := s.c.FindOne(ctx, bson.M{"key": settingsKey}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.DefaultSiteSettings(), nil
		}
		return models.SiteSettings{}, err
	}
	return doc.SiteSettings, nil
}

// Save replaces the settings document, creating it if necessary.
func (s *Store) Save(ctx context.Context, settings models.SiteSettings, actorUID, actorName string) error {
	settings.UpdatedAt = time.Now().UTC()
	settings.UpdatedByUID = actorUID
	settings.UpdatedByName = actorName

	doc := bson.M{"key": settingsKey}
	raw, err := bson.Marshal(settings)
	if err != nil {
		return err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return err
	}
	delete(fields, "_id")
	for k, v := range fields {
		doc[k] = v
	}

	_, err = s.c.ReplaceOne(ctx,
		bson.M{"key": settingsKey},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Reset restores the factory defaults.
func (s *Store) Reset(ctx context.Context, actorUID, actorName string) (models.SiteSettings, error) {
	defaults := models.DefaultSiteSettings()
	if err := s.Save(ctx, defaults, actorUID, actorName); err != nil {
		return models.SiteSettings{}, err
	}
	return s.Get(ctx)
}
