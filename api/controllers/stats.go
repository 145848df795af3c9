package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/internal/admin"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

// StatsProvider is satisfied by admin.Service.
type StatsProvider interface {
	Stats(ctx context.Context) (*admin.Stats, error)
}

// PublicStats returns storefront counters without authentication.
func PublicStats(svc StatsProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
