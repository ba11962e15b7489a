package services

import (
	"context"
	"log"
	"time"

	"workhub/internal/models/db_models"
	"workhub/internal/models/request_models"
	"workhub/internal/repositories"
	mem "workhub/pkg/memcache"
	"workhub/pkg/utils"
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (string, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	resetTokens mem.ResetTokenStore
	mail        IMailService
}

func NewAccountService(accountRepo repositories.AccountRepository, resetTokens mem.ResetTokenStore, mail IMailService) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		resetTokens: resetTokens,
		mail:        mail,
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (string, error) {
	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return "", utils.ErrDatabaseError
	}
	if account == nil {
		return "", utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return "", utils.ErrInvalidCredentials
	}

	return token, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {
	existingAccount, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:         request.DisplayName,
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Role:         "user",
	}

	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		// Do not leak whether the address exists.
		return nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return utils.ErrDatabaseError
	}
	a.resetTokens.Set(token, account.Email, 30*time.Minute)

	if a.mail != nil {
		if err := a.mail.SendMailToResetPassword(account.Email, token); err != nil {
			log.Printf("reset mail to %s failed: %v", account.Email, err)
		}
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email := a.resetTokens.Consume(token)
	if email == "" {
		return utils.ErrInvalidResetToken
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}

	if err := a.accountRepo.UpdatePasswordHash(ctx, email, hashedPassword); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
