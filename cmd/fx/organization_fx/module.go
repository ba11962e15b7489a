package organization_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/api/controllers"
	"workhub/internal/repositories"
	"workhub/internal/services"
)

var Module = fx.Provide(
	provideOrganizationRepo, provideOrganizationService, provideOrganizationController)

func provideOrganizationRepo(db *gorm.DB) repositories.IOrganizationRepository {
	return repositories.NewOrganizationRepository(db)
}

func provideOrganizationService(orgRepo repositories.IOrganizationRepository, accountRepo repositories.AccountRepository) services.OrganizationServiceInterface {
	return services.NewOrganizationService(orgRepo, accountRepo)
}

func provideOrganizationController(orgService services.OrganizationServiceInterface) *controllers.OrganizationController {
	return controllers.NewOrganizationController(orgService)
}
