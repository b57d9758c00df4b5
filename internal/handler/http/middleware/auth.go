package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
)

type identityKey struct{}

// AuthRequired rejects requests without a valid access token and stores the
// caller's identity in the request context. It runs after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := jwtService.IdentityFromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(ctx context.Context) (jwt.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(jwt.Identity)
	return identity, ok
}

// WithIdentity is used by tests that bypass the token middleware.
func WithIdentity(ctx context.Context, identity jwt.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}
