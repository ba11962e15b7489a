package utils

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrgMember         = errors.New("not a member of this organization")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrTaskNotFound         = errors.New("task not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrTierRequired         = errors.New("a paid plan is required for this feature")
	ErrVersionConflict      = errors.New("subscription row was modified concurrently")
	ErrInvalidPage          = errors.New("invalid page parameter")
	ErrInvalidPageSize      = errors.New("invalid page size parameter")
	ErrDatabaseError        = errors.New("database error")
)
