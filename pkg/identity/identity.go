// Package identity verifies bearer tokens issued by the external identity provider.
package identity

import (
	"context"
	"strings"
)

// Identity is the verified profile of a token holder.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier turns a bearer token into a verified Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
