package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iliyamo/railway-ticketing/internal/database"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/storetest"
)

func TestBackend(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *repository.Backend {
		pool, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "rail.db"), 2)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		b := New(pool)
		t.Cleanup(func() { _ = b.Close() })
		return b
	})
}
