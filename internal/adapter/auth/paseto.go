package auth

import (
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
)

type PasetoToken struct {
	parser *paseto.Parser
	key    *paseto.V4SymmetricKey
}

func New() (*PasetoToken, error) {
	parser := paseto.NewParser()
	key := paseto.NewV4SymmetricKey()

	s := PasetoToken{
		parser: &parser,
		key:    &key,
	}

	return &s, nil
}

func (p *PasetoToken) CreateToken(payload *port.TokenPayload) (string, error) {
	token := paseto.NewToken()
	token.SetExpiration(time.Now().Add(1000 * time.Hour))

	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}

// ClaimsPermissions answers permission checks from the token's own
// workspace/action claims; no extra lookup round-trip.
type ClaimsPermissions struct{}

func NewClaimsPermissions() *ClaimsPermissions {
	return &ClaimsPermissions{}
}

func (ClaimsPermissions) HasPermission(payload *port.TokenPayload, workspaceID uint64, action string) bool {
	if payload == nil {
		return false
	}
	for _, granted := range payload.Actions[workspaceID] {
		if granted == action || granted == "*" {
			return true
		}
	}
	return false
}
