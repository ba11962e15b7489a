package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"workhub/cmd/fx/account_fx"
	"workhub/cmd/fx/admin_fx"
	"workhub/cmd/fx/billing_fx"
	"workhub/cmd/fx/db_fx"
	"workhub/cmd/fx/docchat_fx"
	"workhub/cmd/fx/mail_fx"
	"workhub/cmd/fx/memcache_fx"
	"workhub/cmd/fx/organization_fx"
	"workhub/cmd/fx/reconcile_fx"
	"workhub/cmd/fx/task_fx"
	"workhub/internal/api/controllers"
	"workhub/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	app := fx.New(
		db_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		organization_fx.Module,
		billing_fx.Module,
		task_fx.Module,
		docchat_fx.Module,
		reconcile_fx.Module,
		admin_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Println("Starting HTTP server at ${PORT}")
				if err := engine.Run(":" + os.Getenv("PORT")); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	organizationController *controllers.OrganizationController,
	billingController *controllers.BillingController,
	webhookController *controllers.WebhookController,
	taskController *controllers.TaskController,
	docChatController *controllers.DocChatController,
	adminController *controllers.AdminController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r,
		accountController,
		organizationController,
		billingController,
		webhookController,
		taskController,
		docChatController,
		adminController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	organizationController *controllers.OrganizationController,
	billingController *controllers.BillingController,
	webhookController *controllers.WebhookController,
	taskController *controllers.TaskController,
	docChatController *controllers.DocChatController,
	adminController *controllers.AdminController) {

	accountGroup := r.Group("/accounts")
	accountGroup.POST("/signup", accountController.SignUp)
	accountGroup.POST("/login", accountController.Login)
	accountGroup.POST("/forgot-password", accountController.ForgotPassword)
	accountGroup.POST("/reset-password", accountController.ResetPassword)

	billingGroup := r.Group("/billing")
	billingGroup.GET("/configured", billingController.IsConfigured)
	billingGroup.GET("/pricing", billingController.GetPricing)

	r.POST("/webhooks/billing", webhookController.HandleBillingWebhook)

	orgGroup := r.Group("/organizations")
	orgGroup.Use(middleware.JWTAuthMiddleware())
	orgGroup.POST("", organizationController.Create)
	orgGroup.GET("/:orgId", organizationController.Get)
	orgGroup.DELETE("/:orgId", organizationController.Delete)
	orgGroup.POST("/:orgId/members", organizationController.AddMember)
	orgGroup.DELETE("/:orgId/members/:accountId", organizationController.RemoveMember)

	orgGroup.GET("/:orgId/billing/status", billingController.GetStatus)
	orgGroup.GET("/:orgId/billing/eligibility", billingController.CanSubscribe)
	orgGroup.POST("/:orgId/billing/checkout", billingController.CreateCheckout)
	orgGroup.POST("/:orgId/billing/cancel", billingController.Cancel)
	orgGroup.POST("/:orgId/billing/reactivate", billingController.Reactivate)
	orgGroup.POST("/:orgId/billing/cancel-downgrade", billingController.CancelDowngrade)
	orgGroup.POST("/:orgId/billing/portal", billingController.CreatePortalSession)
	orgGroup.POST("/:orgId/billing/sync", billingController.Sync)

	orgGroup.POST("/:orgId/tasks", taskController.Create)
	orgGroup.GET("/:orgId/tasks", taskController.List)
	orgGroup.PATCH("/:orgId/tasks/:taskId", taskController.Update)
	orgGroup.DELETE("/:orgId/tasks/:taskId", taskController.Delete)

	orgGroup.POST("/:orgId/documents", docChatController.Upload)
	orgGroup.GET("/:orgId/documents", docChatController.List)
	orgGroup.POST("/:orgId/documents/chat", docChatController.Ask)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RoleMiddleware("admin"))
	adminGroup.GET("/organizations", adminController.ListOrganizations)
	adminGroup.POST("/reconcile", adminController.TriggerReconcile)
}
