package controllers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"workhub/internal/services"
)

type WebhookController struct {
	webhookService services.WebhookServiceInterface
}

func NewWebhookController(webhookService services.WebhookServiceInterface) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
	}
}

func (w *WebhookController) HandleBillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := w.webhookService.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		log.Printf("billing webhook failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
