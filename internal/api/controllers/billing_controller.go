package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"workhub/internal/models/request_models"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

type BillingController struct {
	billingService services.BillingServiceInterface
}

func NewBillingController(billingService services.BillingServiceInterface) *BillingController {
	return &BillingController{
		billingService: billingService,
	}
}

func (b *BillingController) IsConfigured(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"configured": b.billingService.IsConfigured()}, "")
}

func (b *BillingController) GetPricing(c *gin.Context) {
	pricing, err := b.billingService.GetPricing(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, pricing, "")
}

func (b *BillingController) GetStatus(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	status, err := b.billingService.GetStatus(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, status, "")
}

func (b *BillingController) CanSubscribe(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	eligibility, err := b.billingService.CanSubscribe(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, eligibility, "")
}

// CreateCheckout godoc
// @Summary Start a checkout for a subscription tier
// @Description Returns a hosted checkout URL, or schedules a downgrade when the requested tier is cheaper than the current one
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutRequest true "Checkout Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /organizations/{orgId}/billing/checkout [post]
func (b *BillingController) CreateCheckout(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := b.billingService.CreateCheckout(c.Request.Context(), orgID, actor, request.Tier)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

func (b *BillingController) Cancel(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := b.billingService.Cancel(c.Request.Context(), orgID, actor, request.SubscriptionID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

func (b *BillingController) Reactivate(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.ReactivateSubscriptionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := b.billingService.Reactivate(c.Request.Context(), orgID, actor, request.SubscriptionID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

func (b *BillingController) CancelDowngrade(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	result, err := b.billingService.CancelPendingDowngrade(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

func (b *BillingController) CreatePortalSession(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	result, err := b.billingService.CreatePortalSession(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

func (b *BillingController) Sync(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	result, err := b.billingService.Sync(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}
