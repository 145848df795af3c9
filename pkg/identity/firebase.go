package identity

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens through the Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier initializes the Firebase app and auth client once.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig, logg *logger.Logger) (*FirebaseVerifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("firebase project id is required")
	}

	opts := []option.ClientOption{}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "firebase_project", cfg.ProjectID), "firebase verifier initialized")
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the ID token and lifts the profile claims.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if fbauth.IsIDTokenExpired(err) {
			return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Token expired")
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token")
	}
	return identityFromToken(decoded)
}

func identityFromToken(tok *fbauth.Token) (Identity, error) {
	claim := func(name string) string {
		if v, ok := tok.Claims[name].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	id := Identity{
		UID:     tok.UID,
		Email:   claim("email"),
		Name:    claim("name"),
		Picture: claim("picture"),
	}
	if id.Email == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token has no email")
	}
	return id, nil
}
