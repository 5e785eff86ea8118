package intake

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
)

// CSVSource reads comma-separated vitals with a header row.
type CSVSource struct {
	path string
	r    io.Reader
}

func CSVFile(path string) *CSVSource { return &CSVSource{path: path} }

func CSVReader(r io.Reader) *CSVSource { return &CSVSource{r: r} }

func (s *CSVSource) Load(ctx context.Context) ([]triage.PatientVitals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := s.r
	if r == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("opening csv: %w", err)
		}
		defer f.Close()
		r = f
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return parseTable(rows)
}
