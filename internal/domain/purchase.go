package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purchase grants a user access to a mentored course outside a PRO plan.
// Suspending a mentored enrollment deletes the purchase, so access must be
// re-purchased to re-enroll.
type Purchase struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID    primitive.ObjectID `bson:"courseId" json:"courseId"`
	PurchasedAt time.Time          `bson:"purchasedAt" json:"purchasedAt"`
}
