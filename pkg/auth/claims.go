package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

// AccessTokenClaims is the typed JWT minted by the external identity
// provider. The engine only verifies; it never issues tokens to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID          `json:"user_id"`
	Capabilities []enums.Capability `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}

// HasCapability reports whether the claim set grants the capability.
func (c *AccessTokenClaims) HasCapability(cap enums.Capability) bool {
	if c == nil {
		return false
	}
	for _, granted := range c.Capabilities {
		if granted == cap {
			return true
		}
	}
	return false
}
