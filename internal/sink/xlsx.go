package sink

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/planner-contacts/internal/model"
)

// XLSXWriter writes records to a single-sheet workbook.
type XLSXWriter struct {
	path  string
	sheet string
}

// NewXLSXWriter returns an XLSXWriter for path using the "Planners" sheet.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path, sheet: "Planners"}
}

// Path returns the output file path.
func (w *XLSXWriter) Path() string { return w.path }

// Write builds a new workbook and saves it over any existing file.
func (w *XLSXWriter) Write(records []model.PlannerRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(w.sheet)
	if err != nil {
		return eris.Wrap(err, "sink: add sheet")
	}

	addRow(sheet, Columns)
	for _, r := range records {
		addRow(sheet, row(r))
	}

	if err := f.Save(w.path); err != nil {
		return eris.Wrap(err, "sink: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	r := sheet.AddRow()
	for _, v := range cells {
		r.AddCell().SetString(v)
	}
}

// ReadXLSX loads records from the first sheet of a workbook. The first row
// is the header; columns are matched by name as in DecodeCSV.
func ReadXLSX(path string) ([]model.PlannerRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sink: open xlsx")
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, nil
	}

	rows := f.Sheets[0].Rows
	idx, err := newColumnIndex(rowStrings(rows[0]))
	if err != nil {
		return nil, err
	}

	records := make([]model.PlannerRecord, 0, len(rows)-1)
	for _, r := range rows[1:] {
		fields := rowStrings(r)
		if allBlank(fields) {
			continue
		}
		records = append(records, idx.record(fields))
	}
	return records, nil
}

func rowStrings(r *xlsx.Row) []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.String()
	}
	return out
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
