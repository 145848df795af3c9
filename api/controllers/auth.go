package controllers

import (
	"net/http"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

type firebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type loginResponse struct {
	Message string        `json:"message"`
	User    users.UserDTO `json:"user"`
}

// FirebaseLogin exchanges a provider ID token for the synced local user.
func FirebaseLogin(verifier identity.Verifier, svc middleware.UserSyncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if verifier == nil || svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity verification unavailable"))
			return
		}

		var body firebaseLoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := verifier.Verify(ctx, body.IDToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid or expired token"))
			return
		}

		user, err := svc.Sync(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{Message: "Login successful", User: users.FromModel(user)})
	}
}
