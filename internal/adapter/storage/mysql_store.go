package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

const (
	dialectMySQL         = "mysql"
	mysqlErrDuplicateKey = 1062
	colID                = "id"
)

// MySQLStore implements port.Store on MySQL. All statements are built
// through goqu; nothing is hand-concatenated. Duplicate-key rejections
// from the schema's unique indexes come back as *domain.ConflictError so
// the services can recover from lost races.
type MySQLStore struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{
		db:      db,
		dialect: goqu.Dialect(dialectMySQL),
	}
}

func (s *MySQLStore) Query(ctx context.Context, table string, filter port.Filter, order ...port.Order) ([]port.Row, error) {
	ds := s.dialect.From(table).Where(conditions(filter)...)
	for _, o := range order {
		if o.Desc {
			ds = ds.OrderAppend(goqu.C(o.Column).Desc())
		} else {
			ds = ds.OrderAppend(goqu.C(o.Column).Asc())
		}
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, &domain.UpstreamError{Op: "build select for " + table, Err: err}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "query " + table, Err: err}
	}
	defer rows.Close()

	var out []port.Row
	for rows.Next() {
		row := port.Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, &domain.UpstreamError{Op: "scan " + table, Err: err}
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.UpstreamError{Op: "iterate " + table, Err: err}
	}

	return out, nil
}

func (s *MySQLStore) Insert(ctx context.Context, table string, record port.Row) (port.Row, error) {
	query, args, err := s.dialect.Insert(table).Rows(goqu.Record(record)).Prepared(true).ToSQL()
	if err != nil {
		return nil, &domain.UpstreamError{Op: "build insert for " + table, Err: err}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, &domain.ConflictError{Table: table, Err: err}
		}
		return nil, &domain.UpstreamError{Op: "insert into " + table, Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil || id == 0 {
		// No generated key to read back; echo what was written.
		return record, nil
	}

	stored, err := s.Query(ctx, table, port.Filter{port.Eq(colID, id)})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, &domain.UpstreamError{
			Op:  "read back " + table,
			Err: fmt.Errorf("inserted row %d not found", id),
		}
	}
	return stored[0], nil
}

func (s *MySQLStore) Update(ctx context.Context, table string, filter port.Filter, patch port.Row) (int64, error) {
	record := goqu.Record{}
	for col, v := range patch {
		if d, ok := v.(port.Delta); ok {
			record[col] = goqu.L("? + ?", goqu.C(col), int64(d))
			continue
		}
		record[col] = v
	}

	query, args, err := s.dialect.Update(table).
		Set(record).
		Where(conditions(filter)...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, &domain.UpstreamError{Op: "build update for " + table, Err: err}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, &domain.ConflictError{Table: table, Err: err}
		}
		return 0, &domain.UpstreamError{Op: "update " + table, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, &domain.UpstreamError{Op: "rows affected for " + table, Err: err}
	}
	return affected, nil
}

func (s *MySQLStore) Delete(ctx context.Context, table string, filter port.Filter) (int64, error) {
	query, args, err := s.dialect.Delete(table).Where(conditions(filter)...).Prepared(true).ToSQL()
	if err != nil {
		return 0, &domain.UpstreamError{Op: "build delete for " + table, Err: err}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &domain.UpstreamError{Op: "delete from " + table, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, &domain.UpstreamError{Op: "rows affected for " + table, Err: err}
	}
	return affected, nil
}

func conditions(filter port.Filter) []exp.Expression {
	exprs := make([]exp.Expression, 0, len(filter))
	for _, c := range filter {
		switch c.Op {
		case port.OpNeq:
			exprs = append(exprs, goqu.C(c.Column).Neq(c.Value))
		default:
			exprs = append(exprs, goqu.C(c.Column).Eq(c.Value))
		}
	}
	return exprs
}

// normalizeRow converts driver byte slices into strings so callers see
// the same value types from every store implementation.
func normalizeRow(row port.Row) port.Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateKey
}

var _ port.Store = (*MySQLStore)(nil)
