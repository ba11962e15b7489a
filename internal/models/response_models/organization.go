package response_models

type OrganizationMember struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type OrganizationResponse struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Slug    string               `json:"slug"`
	OwnerID string               `json:"owner_id"`
	Members []OrganizationMember `json:"members,omitempty"`
}

type AdminOrganization struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Tier  string `json:"tier,omitempty"`
	State string `json:"state,omitempty"`
}
