package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/internal/providers"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

type WebhookServiceInterface interface {
	// HandleEvent verifies, deduplicates and applies one provider webhook
	// delivery.
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type WebhookService struct {
	provider    providers.PaymentProvider
	subscripSvc SubscriptionServiceInterface
	subRepo     repositories.ISubscriptionRepository
	eventRepo   repositories.IWebhookEventRepository
}

func NewWebhookService(
	provider providers.PaymentProvider,
	subscripSvc SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
	eventRepo repositories.IWebhookEventRepository,
) WebhookServiceInterface {
	return &WebhookService{
		provider:    provider,
		subscripSvc: subscripSvc,
		subRepo:     subRepo,
		eventRepo:   eventRepo,
	}
}

func (w *WebhookService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	if w.provider == nil {
		return fmt.Errorf("billing is not configured")
	}

	event, err := w.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	isNew, err := w.eventRepo.RecordIfNew(ctx, &db_models.WebhookEvent{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       event.Type,
		Payload:         event.Raw,
		ProcessedAt:     time.Now().Unix(),
	})
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !isNew {
		log.Printf("webhook %s already processed, acking redelivery", event.ID)
		return nil
	}

	if event.Subscription == nil {
		// Unhandled event types are acknowledged and recorded, nothing
		// else to do.
		return nil
	}

	switch event.Type {
	case "subscription.created", "subscription.updated":
		return w.upsertSubscription(ctx, event.Subscription)
	case "subscription.deleted":
		return w.markCanceled(ctx, event.Subscription)
	default:
		return nil
	}
}

func (w *WebhookService) upsertSubscription(ctx context.Context, remote *providers.Subscription) error {
	local, err := w.subRepo.GetByProviderSubID(ctx, remote.ID)
	if err != nil {
		return utils.ErrDatabaseError
	}

	if local != nil {
		return w.subscripSvc.ApplyProviderState(ctx, local, remote)
	}

	orgID, err := organizationFromMetadata(remote)
	if err != nil {
		// Without an organization reference the row cannot be attributed.
		// Log and ack so the provider does not retry forever.
		log.Printf("webhook subscription %s has no organization metadata: %v", remote.ID, err)
		return nil
	}
	return w.subscripSvc.CreateFromProvider(ctx, orgID, remote)
}

func (w *WebhookService) markCanceled(ctx context.Context, remote *providers.Subscription) error {
	local, err := w.subRepo.GetByProviderSubID(ctx, remote.ID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if local == nil {
		log.Printf("webhook: no local row for deleted subscription %s", remote.ID)
		return nil
	}

	remote.Status = billing.StatusCanceled
	return w.subscripSvc.ApplyProviderState(ctx, local, remote)
}

func organizationFromMetadata(remote *providers.Subscription) (uuid.UUID, error) {
	raw, ok := remote.Metadata["organization_id"]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("missing organization_id")
	}
	return uuid.Parse(raw)
}
