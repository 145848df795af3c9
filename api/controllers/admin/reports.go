package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

// ReportBuilder is satisfied by *reports.Engine.
type ReportBuilder interface {
	Build(ctx context.Context, rng reports.Range, reportType enums.ReportType) (*reports.Report, error)
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type exportRequest struct {
	ReportData json.RawMessage `json:"reportData"`
	DateRange  *dateRange      `json:"dateRange"`
}

// SalesReport builds the report for ?start&end&type.
func SalesReport(engine ReportBuilder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()
		if q.Get("start") == "" || q.Get("end") == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Start date and end date are required"))
			return
		}
		rng, err := reports.ParseRange(q.Get("start"), q.Get("end"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := engine.Build(ctx, rng, reportTypeParam(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ExportReport renders client-supplied report data, or builds it from the
// date range when none is sent, as a CSV or PDF attachment.
func ExportReport(engine ReportBuilder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reportType := reportTypeParam(r)

		var body exportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := exportData(ctx, engine, reportType, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		export, err := reports.Render(formatParam(r), string(reportType), *report, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{"report_type": string(reportType), "filename": export.Filename}), "reports.exported")
		}
		responses.WriteAttachment(w, export.Filename, export.ContentType, export.Body)
	}
}

func exportData(ctx context.Context, engine ReportBuilder, reportType enums.ReportType, body exportRequest) (*reports.Report, error) {
	if raw := bytes.TrimSpace(body.ReportData); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		report := reports.Report{Type: reportType}
		if err := json.Unmarshal(raw, &report); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reportData")
		}
		return &report, nil
	}
	if body.DateRange == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reportData or dateRange is required")
	}
	rng, err := reports.ParseRange(body.DateRange.Start, body.DateRange.End)
	if err != nil {
		return nil, err
	}
	return engine.Build(ctx, rng, reportType)
}
