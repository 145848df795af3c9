package enums

import "fmt"

// ExportFormat is a report export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var validExportFormats = []ExportFormat{
	ExportFormatCSV,
	ExportFormatPDF,
}

// String implements fmt.Stringer.
func (e ExportFormat) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExportFormat.
func (e ExportFormat) IsValid() bool {
	for _, candidate := range validExportFormats {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExportFormat converts raw input into a ExportFormat.
func ParseExportFormat(value string) (ExportFormat, error) {
	for _, candidate := range validExportFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export format %q", value)
}

// ContentType returns the response media type for the format.
func (e ExportFormat) ContentType() string {
	if e == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
