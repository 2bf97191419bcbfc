// Package sink writes planner records to tabular files.
package sink

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/model"
)

// Columns is the fixed output header, in order.
var Columns = []string{
	"Name",
	"Profile URL",
	"Website",
	"Instagram",
	"Email",
}

// Writer persists a full result set, replacing any previous output.
type Writer interface {
	Write(records []model.PlannerRecord) error
	Path() string
}

// New returns the writer for format ("csv" or "xlsx") at path.
func New(format, path string) (Writer, error) {
	switch format {
	case "", "csv":
		return &CSVWriter{path: path}, nil
	case "xlsx":
		return &XLSXWriter{path: path, sheet: "Planners"}, nil
	default:
		return nil, eris.Errorf("sink: unsupported format %q", format)
	}
}

// Read loads records from a CSV or XLSX file, chosen by extension.
func Read(path string) ([]model.PlannerRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	return ReadCSV(path)
}

// row maps a record to the Columns order. Null fields are empty cells.
func row(r model.PlannerRecord) []string {
	return []string{
		r.Name,       // Name
		r.ProfileURL, // Profile URL
		r.Website,    // Website
		r.Instagram,  // Instagram
		r.Email,      // Email
	}
}
