package mongo

import (
	"context"
	"errors"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"

	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	courseCollectionName  = "courses"
	chapterCollectionName = "chapters"
	lessonCollectionName  = "lessons"
)

// mongoCourseRepository implements repository.CourseRepository over the
// courses, chapters and lessons collections.
type mongoCourseRepository struct {
	courses  *mongo.Collection
	chapters *mongo.Collection
	lessons  *mongo.Collection
}

// NewMongoCourseRepository creates a new Course repository backed by MongoDB.
func NewMongoCourseRepository(db *mongo.Database) repository.CourseRepository {
	return &mongoCourseRepository{
		courses:  db.Collection(courseCollectionName),
		chapters: db.Collection(chapterCollectionName),
		lessons:  db.Collection(lessonCollectionName),
	}
}

// GetByID retrieves a course by its ID.
func (r *mongoCourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	var course domain.Course
	err := r.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetChapterByID retrieves a chapter by its ID.
func (r *mongoCourseRepository) GetChapterByID(ctx context.Context, id primitive.ObjectID) (*domain.Chapter, error) {
	var chapter domain.Chapter
	err := r.chapters.FindOne(ctx, bson.M{"_id": id}).Decode(&chapter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &chapter, nil
}

// GetLessonByID retrieves a lesson by its ID.
func (r *mongoCourseRepository) GetLessonByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	var lesson domain.Lesson
	err := r.lessons.FindOne(ctx, bson.M{"_id": id}).Decode(&lesson)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

// GetLessonsByCourseID returns every lesson reachable from the course's
// chapters, in chapter then lesson sequence order.
func (r *mongoCourseRepository) GetLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	chapterIDs, err := r.chapterIDsOfCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(chapterIDs) == 0 {
		return []domain.Lesson{}, nil
	}

	var lessons []domain.Lesson
	filter := bson.M{"chapterId": bson.M{"$in": chapterIDs}}
	findOptions := options.Find().SetSort(bson.D{{Key: "chapterId", Value: 1}, {Key: "sequence", Value: 1}})

	cursor, err := r.lessons.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return lessons, nil
}

// CountLessonsByCourseID counts the lessons across all chapters of the course.
func (r *mongoCourseRepository) CountLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) (int, error) {
	chapterIDs, err := r.chapterIDsOfCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if len(chapterIDs) == 0 {
		return 0, nil
	}

	count, err := r.lessons.CountDocuments(ctx, bson.M{"chapterId": bson.M{"$in": chapterIDs}})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *mongoCourseRepository) chapterIDsOfCourse(ctx context.Context, courseID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.chapters.Find(ctx, bson.M{"courseId": courseID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// EnsureCourseIndexes creates necessary indexes for the course catalog collections.
func EnsureCourseIndexes(ctx context.Context, db *mongo.Database) {
	_, err := db.Collection(chapterCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "sequence", Value: 1}},
		Options: options.Index(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create chapter indexes")
	}

	_, err = db.Collection(lessonCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapterId", Value: 1}, {Key: "sequence", Value: 1}},
		Options: options.Index(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create lesson indexes")
	}
}
