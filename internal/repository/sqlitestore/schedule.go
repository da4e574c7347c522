package sqlitestore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// ScheduleStore keeps timetables in the trains table, using the same JSON
// encoding of the station, duration and price sequences as MySQL.
type ScheduleStore struct {
	get acquire
}

const selectTrain = `SELECT train_id, seat_capacity, start_time, stations, durations, prices FROM trains`

func (s *ScheduleStore) Exists(ctx context.Context, id model.TrainID) (bool, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return false, err
	}
	defer put()
	found := false
	err = sqlitex.Execute(conn, `SELECT 1 FROM trains WHERE train_id = ?`, &sqlitex.ExecOptions{
		Args: []any{string(id)},
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	return found, err
}

func (s *ScheduleStore) Get(ctx context.Context, id model.TrainID) (model.TrainTimetable, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return model.TrainTimetable{}, err
	}
	defer put()
	var out []model.TrainTimetable
	err = sqlitex.Execute(conn, selectTrain+` WHERE train_id = ?`, &sqlitex.ExecOptions{
		Args:       []any{string(id)},
		ResultFunc: collectTrains(&out),
	})
	if err != nil {
		return model.TrainTimetable{}, err
	}
	if len(out) == 0 {
		return model.TrainTimetable{}, repository.ErrNotFound
	}
	return out[0], nil
}

func (s *ScheduleStore) Put(ctx context.Context, t model.TrainTimetable) error {
	stations, durations, prices, err := repository.EncodeSequences(t)
	if err != nil {
		return err
	}
	var start any
	if t.StartTime != nil {
		start = model.FormatClock(*t.StartTime)
	}
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	err = sqlitex.Execute(conn,
		`INSERT INTO trains (train_id, seat_capacity, start_time, stations, durations, prices) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{string(t.TrainID), t.SeatCapacity, start, stations, durations, prices}})
	if isUnique(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (s *ScheduleStore) Delete(ctx context.Context, id model.TrainID) error {
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	return sqlitex.Execute(conn, `DELETE FROM trains WHERE train_id = ?`, &sqlitex.ExecOptions{
		Args: []any{string(id)},
	})
}

func (s *ScheduleStore) List(ctx context.Context) ([]model.TrainTimetable, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	var out []model.TrainTimetable
	err = sqlitex.Execute(conn, selectTrain+` ORDER BY train_id`, &sqlitex.ExecOptions{
		ResultFunc: collectTrains(&out),
	})
	return out, err
}

func collectTrains(out *[]model.TrainTimetable) func(stmt *sqlite.Stmt) error {
	return func(stmt *sqlite.Stmt) error {
		t := model.TrainTimetable{
			TrainID:      model.TrainID(stmt.ColumnText(0)),
			SeatCapacity: stmt.ColumnInt(1),
		}
		if stmt.ColumnType(2) != sqlite.TypeNull {
			d, err := model.ParseClock(stmt.ColumnText(2))
			if err != nil {
				return fmt.Errorf("train %s: %w", t.TrainID, err)
			}
			t.StartTime = &d
		}
		if err := repository.DecodeSequences(&t, stmt.ColumnText(3), stmt.ColumnText(4), stmt.ColumnText(5)); err != nil {
			return fmt.Errorf("train %s: %w", t.TrainID, err)
		}
		*out = append(*out, t)
		return nil
	}
}
