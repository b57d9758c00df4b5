package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
)

var (
	ErrMissingClaims = errors.New("token is missing required claims")
	ErrWrongType     = errors.New("token is not an access token")
)

// Identity is what handlers learn about the caller from the access token.
type Identity struct {
	UserID string
	Role   user.Role
}

func (i Identity) IsAdmin() bool {
	return user.IsAdminRole(i.Role)
}

type Service interface {
	GenerateAccessToken(userID string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	// IdentityFromContext reads the token verified by jwtauth.Verifier.
	IdentityFromContext(ctx context.Context) (Identity, error)
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken issues tokens in the shape the identity provider uses.
// The API itself only verifies them.
func (j *JWTService) GenerateAccessToken(userID string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}

	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return Identity{}, ErrWrongType
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return Identity{}, ErrMissingClaims
	}
	return Identity{UserID: userID, Role: user.Role(role)}, nil
}
