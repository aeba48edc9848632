// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is an append-only record of one successful authentication.
// The user's login_count is maintained separately on the user document;
// these records exist for dashboards and auditing.
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserUID   string             `bson:"user_uid" json:"user_uid"`
	Provider  string             `bson:"provider" json:"provider"` // password | google
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
