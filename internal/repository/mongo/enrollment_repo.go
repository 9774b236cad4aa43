package mongo

import (
	"context"
	"errors"
	"time"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"

	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const enrollmentCollectionName = "enrollments"

// mongoEnrollmentRepository implements repository.EnrollmentRepository
type mongoEnrollmentRepository struct {
	collection *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new Enrollment repository backed by MongoDB.
func NewMongoEnrollmentRepository(db *mongo.Database) repository.EnrollmentRepository {
	return &mongoEnrollmentRepository{
		collection: db.Collection(enrollmentCollectionName),
	}
}

// Create inserts a new enrollment. The unique (userId, courseId) index turns
// a concurrent duplicate enroll into ErrDuplicate instead of a second record.
func (r *mongoEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	if enrollment.UserID == primitive.NilObjectID || enrollment.CourseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("enrollment requires userId and courseId")
	}

	enrollment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.LastModifiedAt = enrollment.EnrolledAt
	enrollment.Version = 1
	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = []domain.CompletedLesson{}
	}

	result, err := r.collection.InsertOne(ctx, enrollment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted enrollment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an enrollment by its ID.
func (r *mongoEnrollmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// GetByUserAndCourse retrieves the enrollment for the pair, active or not.
func (r *mongoEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	filter := bson.M{"userId": userID, "courseId": courseID}

	err := r.collection.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// Update persists the mutable enrollment fields. The filter pins the version
// the caller read; a zero match on an existing document means another writer
// got there first and the caller must re-read and retry.
func (r *mongoEnrollmentRepository) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	if enrollment.ID == primitive.NilObjectID {
		return errors.New("enrollment ID is required for update")
	}

	filter := bson.M{"_id": enrollment.ID, "version": enrollment.Version}
	update := bson.M{
		"$set": bson.M{
			"active":           enrollment.Active,
			"completed":        enrollment.Completed,
			"plan":             enrollment.Plan,
			"suspendedAt":      enrollment.SuspendedAt,
			"completedLessons": enrollment.CompletedLessons,
			"lastModifiedAt":   time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing document from a stale version.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": enrollment.ID})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	enrollment.Version++
	enrollment.LastModifiedAt = time.Now().UTC()
	return nil
}

// FindByUser returns one page of the user's enrollments matching the filter,
// newest first, along with the total count of matching records.
func (r *mongoEnrollmentRepository) FindByUser(ctx context.Context, req domain.PageRequest) ([]domain.Enrollment, int64, error) {
	filter := bson.M{"userId": req.UserID}
	switch req.Filter {
	case domain.FilterInactive:
		filter["active"] = false
	case domain.FilterCompleted:
		filter["completed"] = true
	default: // ACTIVE is the default filter
		filter["active"] = true
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "enrolledAt", Value: -1}}).
		SetSkip(int64(req.PageNumber) * int64(req.PageSize)).
		SetLimit(int64(req.PageSize))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, 0, err
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

// GetActiveByUserAndPlan returns the user's active enrollments created under
// the given plan snapshot. Used by plan-downgrade mass suspension.
func (r *mongoEnrollmentRepository) GetActiveByUserAndPlan(ctx context.Context, userID primitive.ObjectID, plan domain.Plan) ([]domain.Enrollment, error) {
	filter := bson.M{"userId": userID, "plan": plan, "active": true}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// CountActiveByCourse counts active enrollments for a course. This backs the
// derived enrolledCount; it is never stored on the course document.
func (r *mongoEnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID primitive.ObjectID) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"courseId": courseID, "active": true})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// EnsureEnrollmentIndexes creates necessary indexes for the enrollments collection.
func EnsureEnrollmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One enrollment record per (user, course) pair; suspension
			// reuses the record instead of creating a new one.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Str("collection", collection.Name()).Msg("Failed to create indexes")
	}
}
