package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutSource records how a saved workout was produced.
type WorkoutSource string

const (
	SourceManual    WorkoutSource = "manual"
	SourcePlan      WorkoutSource = "plan"      // Plan generator output
	SourceGenerated WorkoutSource = "generated" // Completion provider output
)

// Workout is a saved workout owned by a user. The body is opaque text.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Data      string             `bson:"workoutData" json:"workoutData"`
	Source    WorkoutSource      `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
