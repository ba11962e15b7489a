package request_models

type CreateCheckoutRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}

type ReactivateSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}
