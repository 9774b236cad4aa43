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

const purchaseCollectionName = "purchases"

// mongoPurchaseRepository implements repository.PurchaseRepository
type mongoPurchaseRepository struct {
	collection *mongo.Collection
}

// NewMongoPurchaseRepository creates a new Purchase repository backed by MongoDB.
func NewMongoPurchaseRepository(db *mongo.Database) repository.PurchaseRepository {
	return &mongoPurchaseRepository{
		collection: db.Collection(purchaseCollectionName),
	}
}

// Create records a purchase granting mentored-course access.
func (r *mongoPurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) (primitive.ObjectID, error) {
	if purchase.UserID == primitive.NilObjectID || purchase.CourseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("purchase requires userId and courseId")
	}

	purchase.ID = primitive.NewObjectID()
	if purchase.PurchasedAt.IsZero() {
		purchase.PurchasedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, purchase)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted purchase ID")
	}
	return insertedID, nil
}

// GetByUserAndCourse retrieves the purchase for the pair, if any.
func (r *mongoPurchaseRepository) GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	filter := bson.M{"userId": userID, "courseId": courseID}

	err := r.collection.FindOne(ctx, filter).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// Delete removes the purchase for the pair. Deleting an absent purchase is
// not an error; suspension paths call this unconditionally for mentored courses.
func (r *mongoPurchaseRepository) Delete(ctx context.Context, userID, courseID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "courseId": courseID})
	return err
}

// EnsurePurchaseIndexes creates necessary indexes for the purchases collection.
func EnsurePurchaseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Str("collection", collection.Name()).Msg("Failed to create indexes")
	}
}
