package sink

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/model"
)

// CSVWriter writes records as a header-first CSV file.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a CSVWriter for path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the output file path.
func (w *CSVWriter) Path() string { return w.path }

// Write truncates the file and writes the header plus one row per record.
func (w *CSVWriter) Write(records []model.PlannerRecord) error {
	f, err := os.Create(w.path)
	if err != nil {
		return eris.Wrap(err, "sink: create csv")
	}
	defer f.Close() //nolint:errcheck

	if err := WriteCSV(f, records); err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "sink: close csv")
}

// WriteCSV writes the header and records to out.
func WriteCSV(out io.Writer, records []model.PlannerRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "sink: write header")
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return eris.Wrap(err, "sink: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "sink: flush csv")
}

// ReadCSV loads records from a file previously written by CSVWriter.
// Columns are matched by header name, so extra or reordered columns are
// tolerated; missing columns read as empty.
func ReadCSV(path string) ([]model.PlannerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "sink: open csv")
	}
	defer f.Close() //nolint:errcheck

	return DecodeCSV(f)
}

// DecodeCSV parses header-first CSV from r into records.
func DecodeCSV(r io.Reader) ([]model.PlannerRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sink: read header")
	}

	idx, err := newColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.PlannerRecord
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "sink: read row")
		}
		records = append(records, idx.record(fields))
	}
	return records, nil
}

// columnIndex maps output column names to their position in a header row.
type columnIndex map[string]int

func newColumnIndex(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := idx["Name"]; !ok {
		return nil, eris.New("sink: input has no Name column")
	}
	return idx, nil
}

func (idx columnIndex) get(fields []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (idx columnIndex) record(fields []string) model.PlannerRecord {
	return model.PlannerRecord{
		Name:       idx.get(fields, "Name"),
		ProfileURL: idx.get(fields, "Profile URL"),
		Website:    idx.get(fields, "Website"),
		Instagram:  idx.get(fields, "Instagram"),
		Email:      idx.get(fields, "Email"),
	}
}
