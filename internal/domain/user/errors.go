package user

import "errors"

var (
	ErrInvalidPrincipal        = errors.New("token is missing required claims")
	ErrOwnerAccessRequired     = errors.New("owner access required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
