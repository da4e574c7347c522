package sqlitestore

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// InventoryStore keeps the remaining seat counters in the tickets table.
type InventoryStore struct {
	get acquire
}

func (s *InventoryStore) Find(ctx context.Context, key model.InventoryKey) (model.InventoryRecord, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return model.InventoryRecord{}, err
	}
	defer put()
	return find(conn, key)
}

func find(conn *sqlite.Conn, key model.InventoryKey) (model.InventoryRecord, error) {
	var (
		rec   model.InventoryRecord
		found bool
		perr  error
	)
	err := sqlitex.Execute(conn,
		`SELECT run_date, arrival_station, seat_num, price, duration FROM tickets
		 WHERE train_id = ? AND departure_time = ? AND departure_station = ?`,
		&sqlitex.ExecOptions{
			Args: []any{string(key.TrainID), model.FormatMoment(key.DepartureTime), int(key.DepartureStation)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				rec = model.InventoryRecord{
					TrainID:          key.TrainID,
					DepartureTime:    key.DepartureTime,
					DepartureStation: key.DepartureStation,
					ArrivalStation:   model.StationID(stmt.ColumnInt(1)),
					RemainingSeats:   stmt.ColumnInt(2),
					Price:            stmt.ColumnInt(3),
					Duration:         stmt.ColumnInt(4),
				}
				rec.RunDate, perr = model.ParseDate(stmt.ColumnText(0))
				return perr
			},
		})
	if err != nil {
		return model.InventoryRecord{}, err
	}
	if !found {
		return model.InventoryRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

// UpsertSeats uses the same guarded UPDATE as the MySQL backend; the
// number of changed rows tells a rejected delta from a missing row.
func (s *InventoryStore) UpsertSeats(ctx context.Context, key model.InventoryKey, delta int) (int, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return 0, err
	}
	defer put()
	err = sqlitex.Execute(conn,
		`UPDATE tickets SET seat_num = seat_num + ?
		 WHERE train_id = ? AND departure_time = ? AND departure_station = ? AND seat_num + ? >= 0`,
		&sqlitex.ExecOptions{
			Args: []any{delta, string(key.TrainID), model.FormatMoment(key.DepartureTime), int(key.DepartureStation), delta},
		})
	if err != nil {
		return 0, err
	}
	changed := conn.Changes()
	rec, err := find(conn, key)
	if err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, repository.ErrInsufficientSeats
	}
	return rec.Price, nil
}

// BulkInsert writes all records inside a savepoint so a duplicate key
// leaves nothing behind.
func (s *InventoryStore) BulkInsert(ctx context.Context, records []model.InventoryRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()

	release := sqlitex.Save(conn)
	defer release(&err)

	for _, rec := range records {
		err = sqlitex.Execute(conn,
			`INSERT INTO tickets (train_id, run_date, departure_time, departure_station, arrival_station, seat_num, price, duration)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				string(rec.TrainID), model.FormatDate(rec.RunDate), model.FormatMoment(rec.DepartureTime),
				int(rec.DepartureStation), int(rec.ArrivalStation), rec.RemainingSeats, rec.Price, rec.Duration,
			}})
		if isUnique(err) {
			return repository.ErrDuplicate
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *InventoryStore) BulkDelete(ctx context.Context, id model.TrainID, runDate time.Time) (int, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return 0, err
	}
	defer put()
	err = sqlitex.Execute(conn, `DELETE FROM tickets WHERE train_id = ? AND run_date = ?`, &sqlitex.ExecOptions{
		Args: []any{string(id), model.FormatDate(runDate)},
	})
	if err != nil {
		return 0, err
	}
	return conn.Changes(), nil
}
