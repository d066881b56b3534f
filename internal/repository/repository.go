package repository

import (
	"context"
	"fitbuddy/app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateAvatarKey(ctx context.Context, id primitive.ObjectID, key string) error
	UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub domain.Subscription) error
}

// WorkoutRepository stores saved workouts. Owner-scoped methods match on
// both the workout ID and the owner, so a foreign workout reads as ErrNotFound.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, ownerID primitive.ObjectID) (*domain.Workout, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	UpdateData(ctx context.Context, id, ownerID primitive.ObjectID, data string) (*domain.Workout, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}
