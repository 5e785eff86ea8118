package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.i-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(**string) = row[0].(*string)
	for k := 1; k < 5; k++ {
		*dest[k].(**float64) = row[k].(*float64)
	}
	return nil
}

type fakeDB struct {
	rows  *fakeRows
	err   error
	query string
}

func (d *fakeDB) Query(_ context.Context, sql string, _ ...interface{}) (pgx.Rows, error) {
	d.query = sql
	if d.err != nil {
		return nil, d.err
	}
	return d.rows, nil
}

func fp(v float64) *float64 { return &v }
func sp(v string) *string  { return &v }

func TestPostgresSource_Load(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		{sp("P-1"), fp(150), fp(80), fp(99), fp(28)},
		{sp("P-2"), fp(85), (*float64)(nil), fp(98.6), fp(20)},
		{(*string)(nil), fp(90), fp(95), fp(98), fp(18)},
	}}}

	src, err := NewPostgresSource(db, "ward.patient_vitals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].PatientID != "P-1" || *got[0].HeartRate != 150 {
		t.Errorf("unexpected first row %+v", got[0])
	}
	if got[1].SpO2 != nil {
		t.Error("expected NULL spo2 to be absent")
	}
	if got[2].PatientID != "" {
		t.Errorf("expected empty id for NULL, got %q", got[2].PatientID)
	}
	if !strings.Contains(db.query, `FROM "ward"."patient_vitals"`) {
		t.Errorf("expected a quoted identifier, got %s", db.query)
	}
	if strings.Contains(strings.ToUpper(db.query), "INSERT") || strings.Contains(strings.ToUpper(db.query), "UPDATE") {
		t.Error("source must be read-only")
	}
}

func TestPostgresSource_InvalidTable(t *testing.T) {
	for _, table := range []string{"", "vitals; DROP TABLE x", "1abc", "a.b.c", `"quoted"`} {
		if _, err := NewPostgresSource(&fakeDB{}, table); !errors.Is(err, ErrInvalidTable) {
			t.Errorf("table %q: expected ErrInvalidTable, got %v", table, err)
		}
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	boom := errors.New("connection refused")
	src, _ := NewPostgresSource(&fakeDB{err: boom}, DefaultTable)
	if _, err := src.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped query error, got %v", err)
	}
}

func TestPostgresSource_RowsError(t *testing.T) {
	boom := errors.New("conn reset")
	src, _ := NewPostgresSource(&fakeDB{rows: &fakeRows{err: boom}}, DefaultTable)
	if _, err := src.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped rows error, got %v", err)
	}
}
