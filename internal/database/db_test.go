package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLOptions{User: "rail", Pass: "pw", Host: "db", Port: "3306", Name: "railway"}.DSN()
	for _, want := range []string{"rail:pw@tcp(db:3306)/railway", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("DSN %q lacks %q", dsn, want)
		}
	}
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	pool, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "rail.db"), 1)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Take(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Put(conn)
	var tables []string
	err = sqlitex.Execute(conn, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tables = append(tables, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) < 5 {
		t.Fatalf("tables = %v", tables)
	}
	if _, err := OpenSQLite(ctx, "", 1); err == nil {
		t.Fatal("empty path accepted")
	}
}
