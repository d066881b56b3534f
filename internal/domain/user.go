package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus mirrors the billing state of a user.
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = ""
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription is the entitlement record attached to a user.
type Subscription struct {
	Status            SubscriptionStatus `bson:"status,omitempty" json:"status,omitempty"`
	CheckoutSessionID string             `bson:"checkoutSessionId,omitempty" json:"-"` // Last Stripe checkout session started by the user
	UpdatedAt         *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// User represents an account of the app.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`           // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"`        // Never expose this via JSON
	AvatarKey    string             `bson:"avatarKey,omitempty" json:"-"` // Object key of the avatar in S3
	Subscription Subscription       `bson:"subscription" json:"subscription"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPro reports whether the user holds an active subscription.
func (u *User) IsPro() bool {
	return u.Subscription.Status == SubscriptionActive
}
