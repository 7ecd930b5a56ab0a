package authz

import "errors"

// Gate and scope failures. Handlers translate these into safe, non-leaking
// HTTP responses: why a tenant or record does not match is never revealed.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUnauthorized        = errors.New("insufficient permissions")
	ErrForbiddenSelfAction = errors.New("action may not target your own account")
	ErrNoTenantSelected    = errors.New("no tenant selected")
	ErrCampusRequired      = errors.New("campus assignment required for campus_admin")
)
