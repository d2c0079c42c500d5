package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims carries the authenticated user identity issued by the external
// identity service. The ledger never authenticates; it only consumes the
// user id from these claims.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}
