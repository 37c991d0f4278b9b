package repositories

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/schoolportal/internal/app/models"
)

type recordedQuery struct {
	sql  string
	args []any
}

// fakeQuerier records every statement and answers from canned rows in order.
type fakeQuerier struct {
	queries []recordedQuery

	rows     []pgx.Row
	listRows [][]any
	tag      pgconn.CommandTag
	execErr  error
}

var _ Querier = (*fakeQuerier)(nil)

func (q *fakeQuerier) record(sql string, args []any) {
	q.queries = append(q.queries, recordedQuery{sql: sql, args: args})
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	return q.tag, q.execErr
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	return &fakeRows{values: q.listRows, pos: -1}, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.record(sql, args)
	if len(q.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

// fakeRow copies values into the scan destinations by position.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanValues(r.values, dest)
}

func scanValues(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeRows struct {
	values [][]any
	pos    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanValues(r.values[r.pos], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos], nil
}

// lectureValues lays l out in lectureSummaryColumns order.
func lectureValues(l *models.LectureSummary, summaryJSON []byte) []any {
	return []any{
		l.ID, l.Title, l.Subject, l.TeacherID, l.AudioFile.URL, l.AudioFile.Filename,
		l.Transcription, summaryJSON, l.Status, l.PublishedAt,
		l.Enrichment.Status, l.Enrichment.Error, l.CreatedAt, l.UpdatedAt,
	}
}
