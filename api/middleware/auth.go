package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const devRoleHeader = "X-Test-User-Role"

// UserSyncer maps a verified identity onto a local user.
type UserSyncer interface {
	Sync(ctx context.Context, id identity.Identity) (*models.User, error)
	SyncWithRole(ctx context.Context, role enums.UserRole) (*models.User, error)
}

// Auth verifies the bearer token with the identity provider, syncs the local
// user and seeds the request context with the caller. With devAuth set, the
// X-Test-User-Role header stands in for a token.
func Auth(verifier identity.Verifier, syncer UserSyncer, devAuth bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				user *models.User
				err  error
			)
			if devAuth {
				user, err = devUser(ctx, syncer, r.Header.Get(devRoleHeader))
			} else {
				user, err = tokenUser(ctx, verifier, syncer, r.Header.Get("Authorization"))
			}
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithActor(ctx, types.Actor{UserID: user.ID, Role: user.Role})
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
				ctx = logg.WithActorRole(ctx, string(user.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenUser(ctx context.Context, verifier identity.Verifier, syncer UserSyncer, header string) (*models.User, error) {
	token, ok := identity.BearerToken(header)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	if verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity verification unavailable")
	}
	id, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token")
	}
	return syncer.Sync(ctx, id)
}

func devUser(ctx context.Context, syncer UserSyncer, header string) (*models.User, error) {
	raw := strings.ToLower(strings.TrimSpace(header))
	if raw == "" {
		raw = string(enums.UserRoleAdmin)
	}
	role, err := enums.ParseUserRole(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid test role")
	}
	return syncer.SyncWithRole(ctx, role)
}
