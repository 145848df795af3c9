package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

func orderParam(r *http.Request) (uuid.UUID, error) {
	if strings.TrimSpace(chi.URLParam(r, "orderId")) != "" {
		return validators.ParseUUIDParam(r, "orderId")
	}
	return validators.ParseUUIDParam(r, "id")
}

// reportTypeParam defaults to overview. Unknown types pass through and build
// an empty report.
func reportTypeParam(r *http.Request) enums.ReportType {
	raw := strings.TrimSpace(r.URL.Query().Get("type"))
	if raw == "" {
		return enums.ReportTypeOverview
	}
	return enums.ReportType(strings.ToLower(raw))
}

func formatParam(r *http.Request) string {
	raw := strings.TrimSpace(r.URL.Query().Get("format"))
	if raw == "" {
		return string(enums.ExportFormatCSV)
	}
	return raw
}
