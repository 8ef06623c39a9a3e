package domain

// HR user roles.
const (
	RoleViewer = "VIEWER"
	RoleHR     = "HR"
	RoleAdmin  = "ADMIN"
)

const ResourceOnboarding = "onboarding"

// Onboarding permissions checked by the RBAC middleware.
const (
	ActionRead      = "read"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionApprove   = "approve"
	ActionTerminate = "terminate"
	ActionRestore   = "restore"
	ActionDelete    = "delete"
)

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}
