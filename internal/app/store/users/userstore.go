// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UID / uid: the opaque string identifier used in URLs and payloads
//   - UserID / user_id: the MongoDB ObjectID (_id) of the user document
//
// Every mutation of a single user document goes through one conditional
// UpdateOne/FindOneAndUpdate call. There is no read-then-save path: the
// filter carries the guard (current role, absent connection, ...) so
// concurrent requests cannot lose updates or duplicate embedded entries.

import (
	"context"
	"errors"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/normalize"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when creating a user with an email that
	// already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	errBadRole  = errors.New(`role must be "guest"|"student"|"advanced"|"teacher"|"admin"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NewUID generates an opaque uid for a new account.
func NewUID() string {
	return "user_" + uuid.NewString()
}

// Create inserts a new user after normalizing and validating fields.
// The role defaults to student; is_admin is derived from the role.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	if u.UID == "" {
		u.UID = NewUID()
	}
	u.Email = normalize.Email(u.Email)
	u.DisplayName = normalize.Name(u.DisplayName)
	u.DisplayNameCI = text.Fold(u.DisplayName)
	if u.Role == "" {
		u.Role = rolepolicy.RoleStudent
	}
	if !rolepolicy.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	u.IsAdmin = rolepolicy.IsPrivileged(u.Role)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByUID loads a user by uid.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by Mongo document id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns users, optionally filtered by role, newest first.
func (s *Store) List(ctx context.Context, role string, limit, offset int64) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByRole returns the number of users per role.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Role] = row.Count
	}
	return counts, cur.Err()
}

// RecordLogin atomically bumps login_count and last_login in one update
// and returns the post-update document, so the caller can feed fresh
// counters to the upgrade evaluation.
func (s *Store) RecordLogin(ctx context.Context, uid string) (*models.User, error) {
	now := time.Now().UTC()
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"uid": uid},
		bson.M{
			"$inc": bson.M{"login_count": 1},
			"$set": bson.M{"last_login": now, "updated_at": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ApplyUpgrade persists a role transition decided by rolepolicy. The filter
// requires the account to still hold the previous role, so a concurrent
// upgrade or admin override makes this a no-op instead of a double apply.
// is_admin is recomputed inside the same update. Returns whether the
// transition was applied.
func (s *Store) ApplyUpgrade(ctx context.Context, uid, fromRole, toRole string) (bool, error) {
	if !rolepolicy.IsValidRole(toRole) {
		return false, errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "role": fromRole},
		bson.M{"$set": bson.M{
			"role":       toRole,
			"is_admin":   rolepolicy.IsPrivileged(toRole),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetRole is the administrative role override. It recomputes is_admin in
// the same update. The caller is responsible for authorization.
func (s *Store) SetRole(ctx context.Context, uid, role string) error {
	if !rolepolicy.IsValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{
			"role":       role,
			"is_admin":   rolepolicy.IsPrivileged(role),
			"updated_at": time.Now().UTC(),
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

// ProfileUpdate holds the profile fields an update may change.
type ProfileUpdate struct {
	DisplayName string
	PhotoURL    string
	StudentID   string
	SchoolName  string
}

// UpdateProfile updates mutable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.DisplayName != "" {
		name := normalize.Name(upd.DisplayName)
		set["display_name"] = name
		set["display_name_ci"] = text.Fold(name)
	}
	if upd.PhotoURL != "" {
		set["photo_url"] = upd.PhotoURL
	}
	if upd.StudentID != "" {
		set["student_id"] = upd.StudentID
	}
	if upd.SchoolName != "" {
		set["school_name"] = upd.SchoolName
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncExamTotals bumps the cumulative exam counters in one update.
func (s *Store) IncExamTotals(ctx context.Context, uid string, totalDelta, completedDelta int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{
			"$inc": bson.M{
				"exam_progress.total_exams":     totalDelta,
				"exam_progress.completed_exams": completedDelta,
			},
			"$set": bson.M{"updated_at": time.Now().UTC()},
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

// Delete removes a user document. Administrative action only; there is no
// automatic expiry.
func (s *Store) Delete(ctx context.Context, uid string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
