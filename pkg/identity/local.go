package identity

import (
	"context"
	"strings"

	"github.com/angelmondragon/pharmacy-backend/pkg/auth"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

// LocalVerifier accepts HS256 tokens minted by auth.MintIdentityToken. It backs
// local runs and tests when no Firebase project is configured.
type LocalVerifier struct {
	cfg config.JWTConfig
}

func NewLocalVerifier(cfg config.JWTConfig) *LocalVerifier {
	return &LocalVerifier{cfg: cfg}
}

func (v *LocalVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	claims, err := auth.ParseIdentityToken(v.cfg, token)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token")
	}
	return Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
