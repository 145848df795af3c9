package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client carries the configured Stripe key, environment and webhook secret.
type Client struct {
	api             *stripe.Client
	environment     string
	signingSecret   string
	defaultCurrency string
}

// NewClient initializes Stripe once with the configured secrets and env. The
// webhook secret is optional; without it webhook verification is disabled.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	currency := strings.ToLower(strings.TrimSpace(cfg.DefaultCurrency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	c := &Client{
		api:             api,
		environment:     env,
		signingSecret:   strings.TrimSpace(cfg.Secret),
		defaultCurrency: currency,
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"stripe_env": env, "webhooks": c.signingSecret != ""})
		logg.Info(ctx, "stripe client initialized")
	}
	return c, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// DefaultCurrency is the lower-case ISO currency used when callers omit one.
func (c *Client) DefaultCurrency() string {
	if c == nil || c.defaultCurrency == "" {
		return string(stripe.CurrencyUSD)
	}
	return c.defaultCurrency
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	prefixes := map[string][]string{
		testEnv: {"sk_test", "rk_test"},
		liveEnv: {"sk_live", "rk_live"},
	}
	for _, prefix := range prefixes[env] {
		if strings.HasPrefix(key, prefix) {
			return nil
		}
	}
	return fmt.Errorf("stripe environment %q requires a %s secret key (%s)", env, env, strings.Join(prefixes[env], "/"))
}
