package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/config"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/pipeline"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/intake"
)

// cliApp loads config and builds the engines, logging to stderr so stdout
// carries only the JSON result.
func cliApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, newLogger(stderr, cfg.IsDev()))
}

func runCmd() *cobra.Command {
	var (
		input    string
		fromDB   bool
		table    string
		gridSize int
		strategy string
		summary  bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score, allocate beds and schedule surgeries for a patient batch",
		Long: `Reads a batch of vitals from a CSV or XLSX file (--input) or from a
Postgres table (--from-db), runs the full pipeline and prints the report
as JSON. --output additionally writes the report as an XLSX workbook.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (input == "") == !fromDB {
				return errors.New("exactly one of --input or --from-db is required")
			}
			kind, err := beds.ParseStrategy(strategy)
			if err != nil {
				return err
			}

			a, err := cliApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			vitals, err := a.loadBatch(ctx, input, fromDB, table)
			if err != nil {
				return err
			}

			opts := pipeline.Options{GridSize: gridSize, Summary: summary}
			if strategy != "" {
				opts.Strategy = kind
			}
			report, err := a.pipeline.Run(ctx, vitals, opts)
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeReportFile(output, report); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "CSV or XLSX file with one row per patient")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read the batch from Postgres (DATABASE_URL)")
	cmd.Flags().StringVar(&table, "table", "", "vitals table for --from-db (default VITALS_TABLE)")
	cmd.Flags().IntVar(&gridSize, "grid-size", 0, "ward grid size (default GRID_SIZE)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "bed strategy: greedy or optimal (default BED_STRATEGY)")
	cmd.Flags().BoolVar(&summary, "summary", false, "ask the narrative service for a plain-language summary")
	cmd.Flags().StringVar(&output, "output", "", "also write the report to this XLSX file")
	return cmd
}

func (a *app) loadBatch(ctx context.Context, input string, fromDB bool, table string) ([]triage.PatientVitals, error) {
	if !fromDB {
		src, err := intake.Open(input)
		if err != nil {
			return nil, err
		}
		return src.Load(ctx)
	}

	if a.cfg.DatabaseURL == "" {
		return nil, errors.New("--from-db needs DATABASE_URL")
	}
	pool, err := a.openPool(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	if table == "" {
		table = a.cfg.VitalsTable
	}
	src, err := intake.NewPostgresSource(pool, table)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

func writeReportFile(path string, r *pipeline.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := pipeline.WriteXLSX(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func scoreCmd() *cobra.Command {
	var id string
	readings := map[string]*float64{
		triage.VarHeartRate:       new(float64),
		triage.VarSpO2:            new(float64),
		triage.VarTemperature:     new(float64),
		triage.VarRespiratoryRate: new(float64),
	}
	flagName := map[string]string{
		triage.VarHeartRate:       "heart-rate",
		triage.VarSpO2:            "spo2",
		triage.VarTemperature:     "temperature",
		triage.VarRespiratoryRate: "respiratory-rate",
	}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one patient's severity from vitals",
		Long:  "Omitted vitals count as missing, which scores the patient 0.5.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			given := func(v string) *float64 {
				if !cmd.Flags().Changed(flagName[v]) {
					return nil
				}
				return readings[v]
			}
			v := triage.PatientVitals{
				PatientID:       id,
				HeartRate:       given(triage.VarHeartRate),
				SpO2:            given(triage.VarSpO2),
				Temperature:     given(triage.VarTemperature),
				RespiratoryRate: given(triage.VarRespiratoryRate),
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(triage.ScoredPatient{
				PatientID: id,
				Severity:  triage.Round3(a.scorer.Score(v)),
			})
		},
	}
	cmd.Flags().StringVar(&id, "patient-id", "", "patient id echoed in the output")
	cmd.Flags().Float64Var(readings[triage.VarHeartRate], flagName[triage.VarHeartRate], 0, "heart rate, bpm")
	cmd.Flags().Float64Var(readings[triage.VarSpO2], flagName[triage.VarSpO2], 0, "oxygen saturation, %")
	cmd.Flags().Float64Var(readings[triage.VarTemperature], flagName[triage.VarTemperature], 0, "body temperature, °F")
	cmd.Flags().Float64Var(readings[triage.VarRespiratoryRate], flagName[triage.VarRespiratoryRate], 0, "respiratory rate, breaths/min")
	return cmd
}
