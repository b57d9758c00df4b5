package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("u1", user.RoleGIA)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), decoded, nil)
	id, err := svc.IdentityFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Role: user.RoleGIA}, id)
	assert.False(t, id.IsAdmin())
}

func TestJWTService_RejectsOtherTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, refresh, err := svc.JWTAuth().Encode(map[string]interface{}{"user_id": "u1", "role": "admin", "type": "refresh"})
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(refresh)
	require.NoError(t, err)
	_, err = svc.IdentityFromContext(jwtauth.NewContext(context.Background(), decoded, nil))
	assert.ErrorIs(t, err, ErrWrongType)

	_, noRole, err := svc.JWTAuth().Encode(map[string]interface{}{"user_id": "u1"})
	require.NoError(t, err)
	decoded, err = svc.JWTAuth().Decode(noRole)
	require.NoError(t, err)
	_, err = svc.IdentityFromContext(jwtauth.NewContext(context.Background(), decoded, nil))
	assert.ErrorIs(t, err, ErrMissingClaims)

	other := NewJWTService("other-secret", time.Hour)
	token, _, err := other.GenerateAccessToken("u1", user.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.JWTAuth().Decode(token)
	assert.Error(t, err)
}
