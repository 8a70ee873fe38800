package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/response"
	"jobboard/internal/security"
)

type contextKey string

const contextActorKey contextKey = "actor"

type AuthMiddleware struct {
	jwt   *security.JWTProvider
	users user.Repository
}

func NewAuthMiddleware(jwt *security.JWTProvider, users user.Repository) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// Authenticate requires a valid bearer token for an active account. The
// role is taken from the stored account rather than the token claims.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := m.resolve(r)
		if err != nil {
			response.Error(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Optional attaches the actor when a valid token is presented and serves
// the request anonymously otherwise.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		if actor, err := m.resolve(r); err == nil {
			r = r.WithContext(WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (authz.Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "missing authorization header", nil)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil)
	}
	claims, err := m.jwt.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	userID, err := common.ParseUUID(claims.ID)
	if err != nil {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "invalid user id", err)
	}
	account, err := m.users.GetByID(r.Context(), userID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return authz.Actor{}, common.NewError(common.CodeUnauthorized, "user no longer exists", nil)
		}
		return authz.Actor{}, err
	}
	if !account.IsActive {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "account is deactivated", nil)
	}
	return authz.Actor{ID: account.ID, Role: account.Role}, nil
}

func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "authentication required", nil))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
		})
	}
}

func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

func ActorFromContext(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(contextActorKey).(authz.Actor)
	return actor, ok
}
