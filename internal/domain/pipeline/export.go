package pipeline

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/schedule"
)

const (
	SheetSeverity = "Severity"
	SheetBeds     = "Beds"
	SheetSchedule = "Schedule"
)

// WriteXLSX writes the report as a workbook with one sheet per engine.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	severity := [][]any{}
	for _, p := range r.Scored {
		severity = append(severity, []any{p.PatientID, p.Severity})
	}
	if err := writeSheet(f, SheetSeverity, header, []string{"Patient ID", "Severity"}, severity); err != nil {
		return err
	}

	allocations := [][]any{}
	for _, a := range r.Allocations {
		var cost any = ""
		if a.DistanceCost != nil {
			cost = *a.DistanceCost
		}
		allocations = append(allocations, []any{a.PatientID, a.Severity, a.AssignedBed, cost})
	}
	if err := writeSheet(f, SheetBeds, header, []string{"Patient ID", "Severity", "Assigned Bed", "Distance Cost"}, allocations); err != nil {
		return err
	}

	slots := [][]any{}
	if r.Schedule.Infeasible {
		slots = append(slots, []any{schedule.InfeasibleMessage})
	}
	for _, s := range r.Schedule.Slots {
		slots = append(slots, []any{s.PatientID, s.Doctor, s.Room, s.Time, s.Severity})
	}
	if err := writeSheet(f, SheetSchedule, header, []string{"Patient ID", "Doctor", "Room", "Time", "Severity"}, slots); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetSeverity); err == nil {
		f.SetActiveSheet(idx)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, style int, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(name, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+2, err)
		}
	}
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
