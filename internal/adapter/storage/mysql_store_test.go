package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

func getMySQLDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/borrowhub?parseTime=true"
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func insertTestItem(t *testing.T, st *MySQLStore, name string) port.Row {
	t.Helper()
	row, err := st.Insert(context.Background(), "inventory", port.Row{
		"name":               name,
		"description":        "adapter test item",
		"quantity":           10,
		"remaining_quantity": 10,
		"status":             "available",
	})
	require.NoError(t, err)
	return row
}

func TestMySQLStore_InsertReadsBackGeneratedRow(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	st := NewMySQLStore(db)
	name := fmt.Sprintf("test-item-%d", time.Now().UnixNano())

	row := insertTestItem(t, st, name)
	defer db.Exec(`DELETE FROM inventory WHERE name = ?`, name)

	id, ok := row["id"]
	require.True(t, ok, "insert must return the generated key")
	assert.NotZero(t, id)
	assert.Equal(t, name, row["name"], "string columns come back as strings, not []byte")
}

func TestMySQLStore_QueryFilterAndOrder(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewMySQLStore(db)

	prefix := fmt.Sprintf("test-order-%d", time.Now().UnixNano())
	defer db.Exec(`DELETE FROM inventory WHERE name LIKE ?`, prefix+"%")

	for i, status := range []string{"available", "unavailable", "available"} {
		_, err := st.Insert(ctx, "inventory", port.Row{
			"name":               fmt.Sprintf("%s-%d", prefix, i),
			"quantity":           i + 1,
			"remaining_quantity": i + 1,
			"status":             status,
		})
		require.NoError(t, err)
	}

	rows, err := st.Query(ctx, "inventory",
		port.Filter{port.Neq("status", "unavailable")},
		port.Order{Column: "quantity", Desc: true},
	)
	require.NoError(t, err)

	var quantities []int64
	for _, row := range rows {
		name, _ := row["name"].(string)
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			q, _ := row["quantity"].(int64)
			quantities = append(quantities, q)
		}
	}
	assert.Equal(t, []int64{3, 1}, quantities)
}

func TestMySQLStore_UpdateDelta(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewMySQLStore(db)

	name := fmt.Sprintf("test-delta-%d", time.Now().UnixNano())
	row := insertTestItem(t, st, name)
	defer db.Exec(`DELETE FROM inventory WHERE name = ?`, name)

	affected, err := st.Update(ctx, "inventory",
		port.Filter{port.Eq("id", row["id"])},
		port.Row{"remaining_quantity": port.Delta(-3)},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stored, err := st.Query(ctx, "inventory", port.Filter{port.Eq("id", row["id"])})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.EqualValues(t, 7, stored[0]["remaining_quantity"])
}

func TestMySQLStore_DuplicateKeyIsConflict(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewMySQLStore(db)

	authID := fmt.Sprintf("test-auth-%d", time.Now().UnixNano())
	defer db.Exec(`DELETE FROM borrowers WHERE auth_id = ?`, authID)

	_, err := st.Insert(ctx, "borrowers", port.Row{
		"auth_id": authID,
		"email":   "dup@example.com",
	})
	require.NoError(t, err)

	_, err = st.Insert(ctx, "borrowers", port.Row{
		"auth_id": authID,
		"email":   "dup@example.com",
	})
	assert.True(t, domain.IsConflict(err), "unique index violation must surface as a conflict, got: %v", err)
}

func TestMySQLStore_DeleteAffectedCount(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewMySQLStore(db)

	name := fmt.Sprintf("test-delete-%d", time.Now().UnixNano())
	insertTestItem(t, st, name)

	affected, err := st.Delete(ctx, "inventory", port.Filter{port.Eq("name", name)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = st.Delete(ctx, "inventory", port.Filter{port.Eq("name", name)})
	require.NoError(t, err)
	assert.Zero(t, affected)
}
