package api

import (
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

type SubscriptionResponse struct {
	Status    domain.SubscriptionStatus `json:"status"`
	IsPro     bool                      `json:"isPro"`
	UpdatedAt *time.Time                `json:"updatedAt,omitempty"`
}

// GetSubscription godoc
// @Summary Get the caller's subscription status
// @Tags Subscription
// @Produce json
// @Success 200 {object} SubscriptionResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sub, err := h.subscriptionService.Status(c.Request.Context(), userID)
	if err != nil {
		h.abortSubscriptionError(c, err, "Failed to retrieve subscription")
		return
	}
	c.JSON(http.StatusOK, SubscriptionResponse{
		Status:    sub.Status,
		IsPro:     sub.Status == domain.SubscriptionActive,
		UpdatedAt: sub.UpdatedAt,
	})
}

// CreateCheckout godoc
// @Summary Start a Stripe subscription checkout
// @Tags Subscription
// @Produce json
// @Success 200 {object} payment.CheckoutSession
// @Failure 503 {object} gin.H "Payments not configured"
// @Router /subscription/checkout [post]
func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sess, err := h.subscriptionService.StartCheckout(c.Request.Context(), userID)
	if err != nil {
		h.abortSubscriptionError(c, err, "Failed to create checkout session")
		return
	}
	c.JSON(http.StatusOK, sess)
}

// ActivateTest godoc
// @Summary Mark the caller as Pro without payment (test deployments only)
// @Tags Subscription
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "Test activation disabled"
// @Router /subscription/activate-test [post]
func (h *SubscriptionHandler) ActivateTest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.subscriptionService.ActivateTest(c.Request.Context(), userID); err != nil {
		h.abortSubscriptionError(c, err, "Failed to activate subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SubscriptionHandler) abortSubscriptionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTestActivationDisabled):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCheckoutUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		abortWithDomainError(c, err, fallback)
	}
}
