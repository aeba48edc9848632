// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Index creation is idempotent; we aggregate
errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureExams(ctx, db); err != nil {
		problems = append(problems, "exams: "+err.Error())
	}
	if err := ensureBlogs(ctx, db); err != nil {
		problems = append(problems, "blogs: "+err.Error())
	}
	if err := ensureBooks(ctx, db); err != nil {
		problems = append(problems, "books: "+err.Error())
	}
	if err := ensureLoginRecords(ctx, db); err != nil {
		problems = append(problems, "login_records: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("users")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetName("uid_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("role"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at"),
		},
	})
	return err
}

func ensureExams(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("exams")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_uid", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("user_uid_start_date"),
		},
	})
	return err
}

func ensureBlogs(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("blogs")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "author_uid", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
	})
	return err
}

func ensureBooks(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("books")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "grade", Value: 1}},
			Options: options.Index().SetName("category_grade"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("title_ci"),
		},
	})
	return err
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("login_records")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_uid", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_uid_created"),
		},
	})
	return err
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("audit_events")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "user_uid", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("user_uid_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("category_event_timestamp"),
		},
	})
	return err
}
