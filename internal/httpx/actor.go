package httpx

import (
	"context"
	"net/http"

	"github.com/retailops/backoffice/internal/user"
)

// Actor is the identity the authentication collaborator attaches to each
// request. This service trusts the edge layer's headers; it never verifies
// credentials itself.
type Actor struct {
	ID   string
	Role string
}

type actorKey struct{}

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

// WithActor lifts the identity headers into the request context.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerActorID)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		a := Actor{ID: id, Role: r.Header.Get(headerActorRole)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, a)))
	})
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// RequireActor rejects unauthenticated requests.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "No autenticado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "No autenticado")
			return
		}
		if a.Role != user.RoleAdmin {
			writeError(w, http.StatusForbidden, "Requiere rol admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
