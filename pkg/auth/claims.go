package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// ServiceTokenPayload captures the data available when minting a JWT for a
// bot gateway or admin caller. UserID is the Discord snowflake of the acting
// user; authorization against staff roles happens in the API layer, not here.
type ServiceTokenPayload struct {
	UserID string
	JTI    string
}

// ServiceTokenClaims represents the typed JWT accepted by the API.
type ServiceTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
