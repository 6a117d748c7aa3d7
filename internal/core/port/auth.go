package port

// TokenPayload identifies an actor and the workspace actions granted to
// them. Tenant provisioning lives elsewhere; the core only checks.
type TokenPayload struct {
	UserID uint64
	Login  string
	// Actions maps workspace id to granted action names.
	Actions map[uint64][]string
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(payload *TokenPayload) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}

// PermissionService answers "may this actor run this action in this
// workspace". Called before every mutating operation; a denial surfaces
// as ErrForbidden, never silently ignored.
type PermissionService interface {
	HasPermission(payload *TokenPayload, workspaceID uint64, action string) bool
}

// Mutating actions checked at the service boundary.
const (
	ActionOrderCreate  = "orders:create"
	ActionOrderUpdate  = "orders:update"
	ActionOrderCancel  = "orders:cancel"
	ActionOrderPayment = "orders:payment"
	ActionOrderArchive = "orders:archive"
)
