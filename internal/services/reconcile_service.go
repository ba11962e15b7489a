package services

import (
	"context"
	"log"
	"time"

	"workhub/internal/models/response_models"
	"workhub/internal/providers"
	"workhub/internal/repositories"
)

// Subscriptions untouched for this long are re-fetched from the provider.
const reconcileStaleAfter = 24 * time.Hour

const reconcileBatchSize = 100

type ReconcileServiceInterface interface {
	// Run re-fetches stale subscription rows from the payment provider and
	// overwrites the local copy. Per-row failures are logged and skipped.
	Run(ctx context.Context) (*response_models.SyncReport, error)
}

type ReconcileService struct {
	provider    providers.PaymentProvider
	subscripSvc SubscriptionServiceInterface
	subRepo     repositories.ISubscriptionRepository
}

func NewReconcileService(
	provider providers.PaymentProvider,
	subscripSvc SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
) ReconcileServiceInterface {
	return &ReconcileService{
		provider:    provider,
		subscripSvc: subscripSvc,
		subRepo:     subRepo,
	}
}

func (r *ReconcileService) Run(ctx context.Context) (*response_models.SyncReport, error) {
	report := &response_models.SyncReport{}
	if r.provider == nil {
		return report, nil
	}

	cutoff := time.Now().Add(-reconcileStaleAfter)
	subs, err := r.subRepo.ListStale(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		return nil, err
	}

	for i := range subs {
		sub := &subs[i]
		report.Checked++

		remote, err := r.provider.GetSubscription(ctx, sub.ProviderSubID)
		if err != nil {
			log.Printf("reconcile: fetch %s failed: %v", sub.ProviderSubID, err)
			report.Failed++
			continue
		}

		if err := r.subscripSvc.ApplyProviderState(ctx, sub, remote); err != nil {
			log.Printf("reconcile: update %s failed: %v", sub.ProviderSubID, err)
			report.Failed++
			continue
		}
		report.Updated++
	}

	if report.Checked > 0 {
		log.Printf("reconcile run: checked=%d updated=%d failed=%d", report.Checked, report.Updated, report.Failed)
	}
	return report, nil
}
