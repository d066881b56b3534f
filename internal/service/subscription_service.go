package service

import (
	"context"
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/payment"
	"fitbuddy/app/internal/repository"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTestActivationDisabled = errors.New("test activation is disabled")
	ErrCheckoutUnavailable    = errors.New("checkout is not available")
)

// SubscriptionService resolves entitlements and starts checkouts.
// It satisfies assistant.EntitlementChecker.
type SubscriptionService interface {
	Status(ctx context.Context, userID primitive.ObjectID) (domain.Subscription, error)
	Entitled(ctx context.Context, ownerID string) (bool, error)
	StartCheckout(ctx context.Context, userID primitive.ObjectID) (*payment.CheckoutSession, error)
	ActivateTest(ctx context.Context, userID primitive.ObjectID) error
}

type subscriptionService struct {
	userRepo            repository.UserRepository
	checkout            payment.CheckoutProvider
	allowTestActivation bool
	now                 func() time.Time
}

// NewSubscriptionService wires the user store and the checkout provider.
func NewSubscriptionService(userRepo repository.UserRepository, checkout payment.CheckoutProvider, allowTestActivation bool) SubscriptionService {
	if checkout == nil {
		checkout = payment.Disabled{}
	}
	return &subscriptionService{
		userRepo:            userRepo,
		checkout:            checkout,
		allowTestActivation: allowTestActivation,
		now:                 time.Now,
	}
}

func (s *subscriptionService) Status(ctx context.Context, userID primitive.ObjectID) (domain.Subscription, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.Subscription{}, err
	}
	return user.Subscription, nil
}

// Entitled reports whether ownerID holds an active subscription. The user
// record is read on every call so activations take effect without a new token.
func (s *subscriptionService) Entitled(ctx context.Context, ownerID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return false, nil
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsPro(), nil
}

func (s *subscriptionService) StartCheckout(ctx context.Context, userID primitive.ObjectID) (*payment.CheckoutSession, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess, err := s.checkout.CreateSubscriptionCheckout(ctx, user.Email, user.ID.Hex())
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrCheckoutUnavailable
		}
		return nil, err
	}

	sub := user.Subscription
	sub.CheckoutSessionID = sess.ID
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, sub); err != nil {
		// The session exists at Stripe already; losing the reference is not fatal.
		log.Printf("WARN: Could not record checkout session %s for user %s: %v", sess.ID, user.ID.Hex(), err)
	}
	return sess, nil
}

// ActivateTest marks the user as an active subscriber without payment.
func (s *subscriptionService) ActivateTest(ctx context.Context, userID primitive.ObjectID) error {
	if !s.allowTestActivation {
		return ErrTestActivationDisabled
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	sub := user.Subscription
	sub.Status = domain.SubscriptionActive
	sub.UpdatedAt = &now
	if err := s.userRepo.UpdateSubscription(ctx, userID, sub); err != nil {
		return &domain.PersistenceError{Op: "activate subscription", Err: err}
	}
	log.Printf("INFO: User %s updated to Pro (test activation)", userID.Hex())
	return nil
}

func (s *subscriptionService) getUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &domain.PersistenceError{Op: "lookup user", Err: err}
	}
	return user, nil
}
