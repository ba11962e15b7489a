package request_models

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}
