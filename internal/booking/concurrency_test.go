package booking

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/railway-ticketing/internal/database"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/memstore"
	"github.com/iliyamo/railway-ticketing/internal/repository/sqlitestore"
)

// blockingNotifier holds every Notify call until release is closed.
type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) Notify(ctx context.Context, _ Result) error {
	select {
	case n.entered <- struct{}{}:
	default:
	}
	select {
	case <-n.release:
	case <-ctx.Done():
	}
	return nil
}

func TestSlowNotifierDoesNotBlockOtherCalls(t *testing.T) {
	ctx := context.Background()
	n := &blockingNotifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
	e := newEngine(t, memstore.New(), n)
	dep := moment(t, "08:00_06-01")

	type placed struct {
		res Result
		err error
	}
	done := make(chan placed, 1)
	go func() {
		res, err := e.PlaceOrder(ctx, u1, "T1", dep, 1, 1)
		done <- placed{res, err}
	}()

	select {
	case <-n.entered:
	case <-time.After(5 * time.Second):
		close(n.release)
		t.Fatal("purchase never reached the notifier")
	}

	queried := make(chan error, 1)
	go func() {
		_, err := e.QueryTrips(ctx, u2)
		queried <- err
	}()
	select {
	case err := <-queried:
		if err != nil {
			t.Errorf("QueryTrips: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("QueryTrips waited on a pending notification")
	}

	close(n.release)
	p := <-done
	if p.err != nil || p.res.Outcome != Fulfilled {
		t.Fatalf("PlaceOrder = %+v, %v", p.res, p.err)
	}
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) *repository.Backend
	}{
		{"memstore", func(*testing.T) *repository.Backend { return memstore.New() }},
		{"sqlitestore", func(t *testing.T) *repository.Backend {
			pool, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "rail.db"), 2)
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { _ = pool.Close() })
			return sqlitestore.New(pool)
		}},
	}
	for _, bk := range backends {
		t.Run(bk.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEngine(t, bk.open(t), nil)
			dep := moment(t, "08:00_06-01")

			const buyers = 20
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				outcomes = map[Outcome]int{}
				errs     []error
			)
			start := make(chan struct{})
			for i := 0; i < buyers; i++ {
				wg.Add(1)
				go func(user uint64) {
					defer wg.Done()
					<-start
					res, err := e.PlaceOrder(ctx, Caller{UserID: user}, "T1", dep, 1, 1)
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, err)
						return
					}
					outcomes[res.Outcome]++
				}(uint64(100 + i))
			}
			close(start)
			wg.Wait()

			if len(errs) > 0 {
				t.Fatalf("PlaceOrder errors: %v", errs)
			}
			if outcomes[Fulfilled] != 2 || outcomes[InsufficientInventory] != buyers-2 {
				t.Fatalf("outcomes = %v, want 2 fulfilled and %d insufficient", outcomes, buyers-2)
			}
			if got := remaining(t, e, "08:00_06-01", 1); got != 0 {
				t.Fatalf("remaining = %d, want 0", got)
			}
			if e.Processor().Len() != 0 {
				t.Fatalf("queue not empty: %d", e.Processor().Len())
			}
		})
	}
}
