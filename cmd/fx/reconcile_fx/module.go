package reconcile_fx

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"workhub/internal/providers"
	"workhub/internal/repositories"
	"workhub/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideReconcileService),
	fx.Invoke(startReconcileCron),
)

func provideReconcileService(
	provider providers.PaymentProvider,
	subscripSvc services.SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
) services.ReconcileServiceInterface {
	return services.NewReconcileService(provider, subscripSvc, subRepo)
}

func startReconcileCron(lc fx.Lifecycle, reconcileService services.ReconcileServiceInterface) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc("@hourly", func() {
		report, err := reconcileService.Run(context.Background())
		if err != nil {
			log.Printf("Scheduled reconciliation failed: %v", err)
			return
		}
		log.Printf("Scheduled reconciliation: checked=%d updated=%d failed=%d",
			report.Checked, report.Updated, report.Failed)
	})
	if err != nil {
		log.Fatalf("Failed to schedule reconciliation job: %v", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			<-scheduler.Stop().Done()
			return nil
		},
	})
}
