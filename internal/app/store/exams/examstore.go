// internal/app/store/exams/examstore.go
package examstore

// Exams belong to exactly one user and every operation here is scoped by
// the owner's uid in the filter, so a handler cannot read or mutate another
// user's exam by guessing an id.

import (
	"context"
	"errors"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no exam matches the id within the owner's
// scope.
var ErrNotFound = errors.New("exam not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("exams")}
}

// Create inserts a new exam for the owner.
func (s *Store) Create(ctx context.Context, exam models.Exam) (models.Exam, error) {
	exam.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	exam.OverallProgress = overallProgress(exam.Subjects)

	if _, err := s.c.InsertOne(ctx, exam); err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

// GetForOwner loads an exam by id if it belongs to ownerUID.
func (s *Store) GetForOwner(ctx context.Context, ownerUID string, id primitive.ObjectID) (*models.Exam, error) {
	var exam models.Exam
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_uid": ownerUID}).Decode(&exam)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// ListForOwner returns the owner's exams ordered by start date ascending.
func (s *Store) ListForOwner(ctx context.Context, ownerUID string) ([]models.Exam, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"user_uid": ownerUID},
		options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exams []models.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// UpcomingForOwner returns exams starting at or after now, soonest first.
func (s *Store) UpcomingForOwner(ctx context.Context, ownerUID string, limit int64) ([]models.Exam, error) {
	if limit <= 0 {
		limit = 5
	}
	cur, err := s.c.Find(ctx,
		bson.M{"user_uid": ownerUID, "start_date": bson.M{"$gte": time.Now().UTC()}},
		options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exams []models.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// Update replaces the mutable fields of an exam within the owner's scope.
// Subjects are replaced wholesale; overall progress is recomputed from the
// incoming subjects so the stored value never drifts from the todos.
func (s *Store) Update(ctx context.Context, ownerUID string, id primitive.ObjectID, exam models.Exam) (*models.Exam, error) {
	var updated models.Exam
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_uid": ownerUID},
		bson.M{"$set": bson.M{
			"name":             exam.Name,
			"type":             exam.Type,
			"start_date":       exam.StartDate,
			"end_date":         exam.EndDate,
			"subjects":         recomputeSubjects(exam.Subjects),
			"overall_progress": overallProgress(exam.Subjects),
			"updated_at":       time.Now().UTC(),
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

// Delete removes an exam within the owner's scope.
func (s *Store) Delete(ctx context.Context, ownerUID string, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_uid": ownerUID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountForOwner returns the number of exams the owner has.
func (s *Store) CountForOwner(ctx context.Context, ownerUID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_uid": ownerUID})
}

// Count returns the total number of exams across all users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// recomputeSubjects fills each subject's progress percentage from its todos.
func recomputeSubjects(subjects []models.Subject) []models.Subject {
	out := make([]models.Subject, len(subjects))
	for i, sub := range subjects {
		sub.Progress = subjectProgress(sub)
		out[i] = sub
	}
	return out
}

func subjectProgress(sub models.Subject) int {
	if len(sub.Todos) == 0 {
		return 0
	}
	done := 0
	for _, todo := range sub.Todos {
		if todo.IsCompleted {
			done++
		}
	}
	return done * 100 / len(sub.Todos)
}

// overallProgress averages the subject percentages.
func overallProgress(subjects []models.Subject) int {
	if len(subjects) == 0 {
		return 0
	}
	sum := 0
	for _, sub := range subjects {
		sum += subjectProgress(sub)
	}
	return sum / len(subjects)
}
