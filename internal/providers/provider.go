package providers

import (
	"context"
	"fmt"
	"time"
)

// Subscription is the provider's current view of a subscription, normalized
// away from any one SDK's types.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string // active, canceled, past_due, incomplete, unpaid
	PriceLookupKey     string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
	ScheduleID         string
	Metadata           map[string]string
}

type Price struct {
	ID         string
	LookupKey  string
	UnitAmount int64
	Currency   string
	Interval   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CheckoutParams struct {
	CustomerID     string
	PriceID        string
	SuccessURL     string
	CancelURL      string
	OrganizationID string
}

type WebhookEvent struct {
	ID           string
	Type         string // subscription.created | subscription.updated | subscription.deleted
	Subscription *Subscription
	Raw          []byte
}

// Error carries the provider's HTTP status so the operations layer can map
// failures onto user-facing messages.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// PaymentProvider is the capability surface the billing operations need from
// an external payments platform. Implementations are injected, never held as
// package-level singletons.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, name, organizationID string) (string, error)
	GetPriceByLookupKey(ctx context.Context, lookupKey string) (*Price, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// CreateFreeSubscription provisions a zero-cost subscription directly,
	// keyed idempotently so a retried request cannot duplicate it.
	CreateFreeSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*Subscription, error)

	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error)
	Reactivate(ctx context.Context, subscriptionID string) (*Subscription, error)

	CreateDowngradeSchedule(ctx context.Context, subscriptionID, currentPriceID, newPriceID string) (string, error)
	FindScheduleForSubscription(ctx context.Context, subscriptionID string) (string, error)
	ReleaseSchedule(ctx context.Context, scheduleID string) error

	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
