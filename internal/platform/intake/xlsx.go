package intake

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
)

var errNoSheets = errors.New("workbook has no sheets")

// XLSXSource reads vitals from one worksheet. Sheet defaults to the first.
type XLSXSource struct {
	Sheet string
	path  string
	r     io.Reader
}

func XLSXFile(path string) *XLSXSource { return &XLSXSource{path: path} }

func XLSXReader(r io.Reader) *XLSXSource { return &XLSXSource{r: r} }

func (s *XLSXSource) Load(ctx context.Context) ([]triage.PatientVitals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		f   *excelize.File
		err error
	)
	if s.r != nil {
		f, err = excelize.OpenReader(s.r)
	} else {
		f, err = excelize.OpenFile(s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errNoSheets
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return parseTable(rows)
}
