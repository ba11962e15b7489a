package db_models

import "github.com/google/uuid"

const (
	OrgRoleOwner  = "owner"
	OrgRoleMember = "member"
)

type Organization struct {
	BaseModel
	Name    string
	Slug    string    `gorm:"uniqueIndex"`
	OwnerID uuid.UUID `gorm:"index"`

	Memberships []Membership
}

type Membership struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"index:idx_membership_org_account,unique"`
	AccountID      uuid.UUID `gorm:"index:idx_membership_org_account,unique"`
	Role           string    `gorm:"default:'member'"` // "owner" | "member"

	Organization Organization `gorm:"foreignKey:OrganizationID"`
	Account      Account      `gorm:"foreignKey:AccountID"`
}
