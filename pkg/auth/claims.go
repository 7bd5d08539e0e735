package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by this service.
type Claims struct {
	jwt.RegisteredClaims

	// Name is the display name of the authenticated user, when the
	// identity provider includes one.
	Name string `json:"name,omitempty"`

	// Email is the authenticated user's email address.
	Email string `json:"email,omitempty"`
}
