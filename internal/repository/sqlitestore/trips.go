package sqlitestore

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// TripStore keeps the trip ledger in the trips table.
type TripStore struct {
	get acquire
}

func (s *TripStore) Find(ctx context.Context, userID uint64) ([]model.TripRecord, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	var trips []model.TripRecord
	err = sqlitex.Execute(conn,
		`SELECT id, train_id, departure_station, arrival_station, ticket_count, duration, price, departure_time, arrival_time
		 FROM trips WHERE user_id = ? ORDER BY id`,
		&sqlitex.ExecOptions{
			Args: []any{int64(userID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				t := model.TripRecord{
					ID:               stmt.ColumnInt64(0),
					TrainID:          model.TrainID(stmt.ColumnText(1)),
					DepartureStation: model.StationID(stmt.ColumnInt(2)),
					ArrivalStation:   model.StationID(stmt.ColumnInt(3)),
					TicketCount:      stmt.ColumnInt(4),
					Duration:         stmt.ColumnInt(5),
					Price:            stmt.ColumnInt(6),
				}
				var err error
				if t.DepartureTime, err = model.ParseMoment(stmt.ColumnText(7)); err != nil {
					return err
				}
				if t.ArrivalTime, err = model.ParseMoment(stmt.ColumnText(8)); err != nil {
					return err
				}
				trips = append(trips, t)
				return nil
			},
		})
	return trips, err
}

func (s *TripStore) Insert(ctx context.Context, userID uint64, t model.TripRecord) (model.TripRecord, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return model.TripRecord{}, err
	}
	defer put()
	err = sqlitex.Execute(conn,
		`INSERT INTO trips (user_id, train_id, departure_station, arrival_station, ticket_count, duration, price, departure_time, arrival_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			int64(userID), string(t.TrainID), int(t.DepartureStation), int(t.ArrivalStation),
			t.TicketCount, t.Duration, t.Price, model.FormatMoment(t.DepartureTime), model.FormatMoment(t.ArrivalTime),
		}})
	if err != nil {
		return model.TripRecord{}, err
	}
	t.ID = conn.LastInsertRowID()
	return t, nil
}

func (s *TripStore) Remove(ctx context.Context, userID uint64, t model.TripRecord) error {
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	err = sqlitex.Execute(conn, `DELETE FROM trips WHERE id = ? AND user_id = ?`, &sqlitex.ExecOptions{
		Args: []any{t.ID, int64(userID)},
	})
	if err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
