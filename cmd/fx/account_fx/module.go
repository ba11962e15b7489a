package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/api/controllers"
	"workhub/internal/repositories"
	"workhub/internal/services"
	mem "workhub/pkg/memcache"
)

var Module = fx.Provide(
	provideAccountRepo, provideAccountService, provideAccountController)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(accountRepo repositories.AccountRepository, resetTokens mem.ResetTokenStore, mailService services.IMailService) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, resetTokens, mailService)
}

func provideAccountController(accountService services.AccountServiceInterface) *controllers.AccountController {
	return controllers.NewAccountController(accountService)
}
