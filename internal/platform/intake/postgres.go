package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
)

// DefaultTable is the table the CLI reads when none is given.
const DefaultTable = "patient_vitals"

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PostgresSource reads a batch from a vitals table. It only ever runs a
// SELECT; nothing is written back.
type PostgresSource struct {
	db    queryable
	query string
}

// NewPostgresSource accepts a table or schema.table identifier.
func NewPostgresSource(db queryable, table string) (*PostgresSource, error) {
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return &PostgresSource{
		db: db,
		query: `SELECT patient_id::text, heart_rate::float8, spo2::float8, temperature::float8, respiratory_rate::float8
		FROM ` + ident + ` ORDER BY patient_id`,
	}, nil
}

func (s *PostgresSource) Load(ctx context.Context) ([]triage.PatientVitals, error) {
	rows, err := s.db.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("querying vitals: %w", err)
	}
	defer rows.Close()

	var out []triage.PatientVitals
	for rows.Next() {
		var id *string
		var v triage.PatientVitals
		if err := rows.Scan(&id, &v.HeartRate, &v.SpO2, &v.Temperature, &v.RespiratoryRate); err != nil {
			return nil, fmt.Errorf("scanning vitals: %w", err)
		}
		if id != nil {
			v.PatientID = *id
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading vitals: %w", err)
	}
	return out, nil
}
