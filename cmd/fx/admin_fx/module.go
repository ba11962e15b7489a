package admin_fx

import (
	"go.uber.org/fx"
	"workhub/internal/api/controllers"
	"workhub/internal/repositories"
	"workhub/internal/services"
)

var Module = fx.Provide(
	provideAdminService, provideAdminController)

func provideAdminService(
	orgRepo repositories.IOrganizationRepository,
	subscripSvc services.SubscriptionServiceInterface,
	reconcileSvc services.ReconcileServiceInterface,
) services.AdminServiceInterface {
	return services.NewAdminService(orgRepo, subscripSvc, reconcileSvc)
}

func provideAdminController(adminService services.AdminServiceInterface) *controllers.AdminController {
	return controllers.NewAdminController(adminService)
}
