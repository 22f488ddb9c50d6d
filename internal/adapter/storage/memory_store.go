package storage

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

// UniqueKey declares a uniqueness constraint for the memory store. When
// When is non-empty the key only applies to rows matching it, which is
// how the single-draft-per-borrower rule is expressed.
type UniqueKey struct {
	Columns []string
	When    port.Filter
}

// MemoryStore is an in-process port.Store used by the service tests and
// the race-check tool. It enforces declared unique keys the same way the
// MySQL schema does, so conflict recovery paths can be exercised without
// a database.
type MemoryStore struct {
	mu     sync.Mutex
	seq    map[string]int64
	tables map[string][]port.Row
	unique map[string][]UniqueKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seq:    make(map[string]int64),
		tables: make(map[string][]port.Row),
		unique: make(map[string][]UniqueKey),
	}
}

func (m *MemoryStore) AddUniqueKey(table string, key UniqueKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unique[table] = append(m.unique[table], key)
}

func (m *MemoryStore) Query(_ context.Context, table string, filter port.Filter, order ...port.Order) ([]port.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []port.Row
	for _, row := range m.tables[table] {
		if matches(row, filter) {
			out = append(out, copyRow(row))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range order {
			a, b := out[i][o.Column], out[j][o.Column]
			if equalValues(a, b) {
				continue
			}
			if o.Desc {
				return lessValue(b, a)
			}
			return lessValue(a, b)
		}
		return false
	})

	return out, nil
}

func (m *MemoryStore) Insert(_ context.Context, table string, record port.Row) (port.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := copyRow(record)
	if _, ok := row["id"]; !ok {
		m.seq[table]++
		row["id"] = m.seq[table]
	}

	if err := m.checkUnique(table, row, -1); err != nil {
		return nil, err
	}

	m.tables[table] = append(m.tables[table], row)
	return copyRow(row), nil
}

func (m *MemoryStore) Update(_ context.Context, table string, filter port.Filter, patch port.Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for i, row := range m.tables[table] {
		if !matches(row, filter) {
			continue
		}
		updated := copyRow(row)
		for k, v := range patch {
			if d, ok := v.(port.Delta); ok {
				current, _ := toInt64(updated[k])
				updated[k] = current + int64(d)
				continue
			}
			updated[k] = v
		}
		if err := m.checkUnique(table, updated, i); err != nil {
			return affected, err
		}
		m.tables[table][i] = updated
		affected++
	}
	return affected, nil
}

func (m *MemoryStore) Delete(_ context.Context, table string, filter port.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []port.Row
	var affected int64
	for _, row := range m.tables[table] {
		if matches(row, filter) {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[table] = kept
	return affected, nil
}

func (m *MemoryStore) checkUnique(table string, candidate port.Row, skipIndex int) error {
	for _, key := range m.unique[table] {
		if len(key.When) > 0 && !matches(candidate, key.When) {
			continue
		}
		for i, existing := range m.tables[table] {
			if i == skipIndex {
				continue
			}
			if len(key.When) > 0 && !matches(existing, key.When) {
				continue
			}
			same := true
			for _, col := range key.Columns {
				if !equalValues(existing[col], candidate[col]) {
					same = false
					break
				}
			}
			if same {
				return &domain.ConflictError{
					Table: table,
					Err:   fmt.Errorf("duplicate key %v", key.Columns),
				}
			}
		}
	}
	return nil
}

func matches(row port.Row, filter port.Filter) bool {
	for _, c := range filter {
		eq := equalValues(row[c.Column], c.Value)
		if c.Op == port.OpNeq {
			if eq {
				return false
			}
		} else if !eq {
			return false
		}
	}
	return true
}

func copyRow(row port.Row) port.Row {
	out := make(port.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// equalValues compares loosely across the integer widths and string-ish
// types that reach the store from different callers.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		return false
	}
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai == bi
		}
	}
	if as, ok := toString(a); ok {
		if bs, ok := toString(b); ok {
			return as == bs
		}
	}
	return reflect.DeepEqual(a, b)
}

func lessValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai < bi
		}
	}
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			return af < bf
		}
	}
	if as, ok := toString(a); ok {
		if bs, ok := toString(b); ok {
			return as < bs
		}
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

var _ port.Store = (*MemoryStore)(nil)
