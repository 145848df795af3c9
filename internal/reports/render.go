package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

var ErrUnsupportedFormat = pkgerrors.New(pkgerrors.CodeValidation, "Unsupported format")

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render encodes report in format. The filename is stamped with today's date.
func Render(format string, reportType string, report Report, today time.Time) (*Export, error) {
	f, err := enums.ParseExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return nil, ErrUnsupportedFormat
	}
	var body []byte
	switch f {
	case enums.ExportFormatCSV:
		body, err = renderCSV(reportType, report)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to export report")
		}
	case enums.ExportFormatPDF:
		body = []byte(fmt.Sprintf("PDF Report for %s - This is a placeholder PDF content", reportType))
	}
	return &Export{
		Filename:    Filename(reportType, f, today),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// Filename is sales-report-{type}-{YYYY-MM-DD}.{ext}.
func Filename(reportType string, format enums.ExportFormat, today time.Time) string {
	return fmt.Sprintf("sales-report-%s-%s.%s", reportType, today.UTC().Format(dayLayout), format)
}

func renderCSV(reportType string, report Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("Report Data\n")
	w := csv.NewWriter(&buf)

	var records [][]string
	switch enums.ReportType(reportType) {
	case enums.ReportTypeOverview:
		o := Overview{}
		if report.Overview != nil {
			o = *report.Overview
		}
		records = [][]string{
			{"Metric", "Value"},
			{"Total Sales", num(o.TotalSales)},
			{"Total Orders", strconv.Itoa(o.TotalOrders)},
			{"Total Customers", strconv.Itoa(o.TotalCustomers)},
			{"Average Order Value", num(o.AverageOrderValue)},
		}
	case enums.ReportTypeMedicines:
		records = append(records, []string{"Medicine", "Category", "Quantity Sold", "Revenue", "Avg. Price", "Seller"})
		for _, m := range report.Medicines {
			records = append(records, []string{m.Name, m.Category, strconv.Itoa(m.QuantitySold), num(m.Revenue), num(m.AvgPrice), m.Seller})
		}
	case enums.ReportTypeSellers:
		records = append(records, []string{"Seller", "Total Sales", "Orders", "Medicines", "Avg. Order Value", "Commission"})
		for _, s := range report.Sellers {
			records = append(records, []string{s.Name, num(s.TotalSales), strconv.Itoa(s.TotalOrders), strconv.Itoa(s.TotalMedicines), num(s.AverageOrderValue), num(s.Commission)})
		}
	case enums.ReportTypeCustomers:
		records = append(records, []string{"Customer", "Email", "Total Spent", "Orders", "Avg. Order Value", "Last Order"})
		for _, c := range report.Customers {
			last := ""
			if c.LastOrderDate != nil {
				last = c.LastOrderDate.UTC().Format(time.RFC3339)
			}
			records = append(records, []string{c.Name, c.Email, num(c.TotalSpent), strconv.Itoa(c.TotalOrders), num(c.AverageOrderValue), last})
		}
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
