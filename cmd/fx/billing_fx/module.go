package billing_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/api/controllers"
	"workhub/internal/billing"
	"workhub/internal/providers"
	"workhub/internal/repositories"
	"workhub/internal/services"
)

var Module = fx.Provide(
	provideRegistry,
	providePaymentProvider,
	provideSubscriptionRepo,
	provideWebhookEventRepo,
	provideSubscriptionService,
	provideBillingService,
	provideWebhookService,
	provideBillingController,
	provideWebhookController,
)

func provideRegistry() *billing.Registry {
	return billing.NewRegistry(os.Getenv("BILLING_LOOKUP_KEY_PREFIX"))
}

// providePaymentProvider returns nil when no secret key is configured. The
// billing service treats a nil provider as "billing disabled" and keeps the
// rest of the app usable on the free tier.
func providePaymentProvider() providers.PaymentProvider {
	cfg := providers.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SuccessURL:    os.Getenv("BILLING_SUCCESS_URL"),
		CancelURL:     os.Getenv("BILLING_CANCEL_URL"),
	}

	if cfg.SecretKey == "" {
		log.Println("STRIPE_SECRET_KEY not set, billing is disabled")
		return nil
	}

	provider, err := providers.NewStripeProvider(cfg)
	if err != nil {
		log.Printf("Error initializing payment provider: %v", err)
		return nil
	}
	return provider
}

func provideSubscriptionRepo(db *gorm.DB) repositories.ISubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideWebhookEventRepo(db *gorm.DB) repositories.IWebhookEventRepository {
	return repositories.NewWebhookEventRepository(db)
}

func provideSubscriptionService(subRepo repositories.ISubscriptionRepository, registry *billing.Registry) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subRepo, registry)
}

func provideBillingService(
	provider providers.PaymentProvider,
	subscripSvc services.SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
	orgRepo repositories.IOrganizationRepository,
	accountRepo repositories.AccountRepository,
	registry *billing.Registry,
	mailService services.IMailService,
) services.BillingServiceInterface {
	cfg := services.BillingConfig{
		SuccessURL:      os.Getenv("BILLING_SUCCESS_URL"),
		CancelURL:       os.Getenv("BILLING_CANCEL_URL"),
		PortalReturnURL: os.Getenv("BILLING_PORTAL_RETURN_URL"),
	}
	return services.NewBillingService(provider, subscripSvc, subRepo, orgRepo, accountRepo, registry, mailService, cfg)
}

func provideWebhookService(
	provider providers.PaymentProvider,
	subscripSvc services.SubscriptionServiceInterface,
	subRepo repositories.ISubscriptionRepository,
	eventRepo repositories.IWebhookEventRepository,
) services.WebhookServiceInterface {
	return services.NewWebhookService(provider, subscripSvc, subRepo, eventRepo)
}

func provideBillingController(billingService services.BillingServiceInterface) *controllers.BillingController {
	return controllers.NewBillingController(billingService)
}

func provideWebhookController(webhookService services.WebhookServiceInterface) *controllers.WebhookController {
	return controllers.NewWebhookController(webhookService)
}
