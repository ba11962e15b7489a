package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripeProvider struct {
	sc  *client.API
	cfg StripeConfig
}

func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("missing stripe secret key")
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeProvider{sc: sc, cfg: cfg}, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name, organizationID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("organization_id", organizationID)

	cust, err := p.sc.Customers.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return cust.ID, nil
}

func (p *StripeProvider) GetPriceByLookupKey(ctx context.Context, lookupKey string) (*Price, error) {
	params := &stripe.PriceListParams{
		LookupKeys: stripe.StringSlice([]string{lookupKey}),
	}
	params.Context = ctx

	iter := p.sc.Prices.List(params)
	for iter.Next() {
		pr := iter.Price()
		out := &Price{
			ID:         pr.ID,
			LookupKey:  pr.LookupKey,
			UnitAmount: pr.UnitAmount,
			Currency:   string(pr.Currency),
		}
		if pr.Recurring != nil {
			out.Interval = string(pr.Recurring.Interval)
		}
		return out, nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr(err)
	}
	return nil, &Error{StatusCode: 404, Code: "price_not_found", Message: fmt.Sprintf("no price with lookup key %q", lookupKey)}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(cp.CustomerID),
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(cp.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{},
	}
	params.Context = ctx
	params.SubscriptionData.AddMetadata("organization_id", cp.OrganizationID)

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) CreateFreeSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	sub, err := p.sc.Subscriptions.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.sc.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (p *StripeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := p.sc.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (p *StripeProvider) Reactivate(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}
	params.Context = ctx

	sub, err := p.sc.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return fromStripeSubscription(sub), nil
}

// CreateDowngradeSchedule wraps the subscription in a schedule that keeps the
// current price until the period boundary, then switches to the new price.
func (p *StripeProvider) CreateDowngradeSchedule(ctx context.Context, subscriptionID, currentPriceID, newPriceID string) (string, error) {
	createParams := &stripe.SubscriptionScheduleParams{
		FromSubscription: stripe.String(subscriptionID),
	}
	createParams.Context = ctx

	sched, err := p.sc.SubscriptionSchedules.New(createParams)
	if err != nil {
		return "", wrapStripeErr(err)
	}

	updateParams := &stripe.SubscriptionScheduleParams{
		EndBehavior: stripe.String(string(stripe.SubscriptionScheduleEndBehaviorRelease)),
		Phases: []*stripe.SubscriptionSchedulePhaseParams{
			{
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(currentPriceID), Quantity: stripe.Int64(1)},
				},
				StartDate: stripe.Int64(sched.CurrentPhase.StartDate),
				EndDate:   stripe.Int64(sched.CurrentPhase.EndDate),
			},
			{
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(newPriceID), Quantity: stripe.Int64(1)},
				},
			},
		},
	}
	updateParams.Context = ctx

	if _, err := p.sc.SubscriptionSchedules.Update(sched.ID, updateParams); err != nil {
		return "", wrapStripeErr(err)
	}
	return sched.ID, nil
}

func (p *StripeProvider) FindScheduleForSubscription(ctx context.Context, subscriptionID string) (string, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.sc.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	if sub.Schedule == nil {
		return "", nil
	}
	return sub.Schedule.ID, nil
}

func (p *StripeProvider) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	params := &stripe.SubscriptionScheduleReleaseParams{}
	params.Context = ctx

	if _, err := p.sc.SubscriptionSchedules.Release(scheduleID, params); err != nil {
		return wrapStripeErr(err)
	}
	return nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Raw: event.Data.Raw}

	switch event.Type {
	case "customer.subscription.created":
		out.Type = "subscription.created"
	case "customer.subscription.updated":
		out.Type = "subscription.updated"
	case "customer.subscription.deleted":
		out.Type = "subscription.deleted"
	default:
		out.Type = string(event.Type)
		return out, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("webhook payload decode: %w", err)
	}
	out.Subscription = fromStripeSubscription(&sub)
	return out, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                 sub.ID,
		Status:             normalizeStatus(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Metadata:           sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		out.CanceledAt = &t
	}
	if sub.Schedule != nil {
		out.ScheduleID = sub.Schedule.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceLookupKey = sub.Items.Data[0].Price.LookupKey
	}
	return out
}

func normalizeStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return "active"
	case stripe.SubscriptionStatusCanceled:
		return "canceled"
	case stripe.SubscriptionStatusPastDue:
		return "past_due"
	case stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusIncompleteExpired:
		return "incomplete"
	case stripe.SubscriptionStatusUnpaid:
		return "unpaid"
	default:
		return string(status)
	}
}

func wrapStripeErr(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		return &Error{
			StatusCode: sErr.HTTPStatusCode,
			Code:       string(sErr.Code),
			Message:    sErr.Msg,
		}
	}
	return err
}
