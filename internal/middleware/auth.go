package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
)

type userKey struct{}

// WithUser returns a copy of ctx carrying the authenticated caller.
func WithUser(ctx context.Context, u domain.UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the caller stored by the authentication middleware.
func UserFrom(ctx context.Context) (domain.UserContext, bool) {
	u, ok := ctx.Value(userKey{}).(domain.UserContext)
	return u, ok
}

// Claims is the JWT payload the API accepts: the standard registered claims
// with the user id in "sub", plus the caller's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthenticator returns a middleware that requires a valid HS256 bearer
// token signed with secret. On success the caller's domain.UserContext is
// stored in the request context; otherwise the request is rejected with 401.
//
// Tokens are issued by an external identity provider. A missing role claim
// means domain.RoleUser.
func NewAuthenticator(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			var claims Claims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			user, ok := claims.user()
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token claims")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func (c Claims) user() (domain.UserContext, bool) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.UserContext{}, false
	}
	role := domain.Role(c.Role)
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return domain.UserContext{}, false
	}
	return domain.UserContext{ID: id, Role: role}, true
}

// RequireRole returns a middleware that rejects callers whose role is not in
// roles with 403. It must run after NewAuthenticator.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !allowed[user.Role] {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
