package jwt

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is shared by access and refresh tokens; Type tells them apart so a
// refresh token never passes the request gate.
type Claims struct {
	jwt.RegisteredClaims
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	Type     string     `json:"typ"`
}

type JWTUtil interface {
	GenerateAccessToken(id model.Identity) (token string, exp time.Time, jti string, err error)
	GenerateRefreshToken(id model.Identity) (token string, exp time.Time, jti string, err error)
	ValidateAccessToken(token string) (claims Claims, err error)
	ValidateRefreshToken(token string) (claims Claims, err error)
}
