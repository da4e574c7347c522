package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"

    "github.com/iliyamo/railway-ticketing/internal/model"
)

// ScheduleRepo persists timetables in the `trains` table.  The station,
// duration and price sequences are stored as JSON arrays; start_time is
// the origin departure clock ("HH:MM") or NULL.
type ScheduleRepo struct {
    q querier
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{q: db} }

// Exists reports whether a timetable is stored for the train.
func (r *ScheduleRepo) Exists(ctx context.Context, id model.TrainID) (bool, error) {
    var one int
    err := r.q.QueryRowContext(ctx, `SELECT 1 FROM trains WHERE train_id = ? LIMIT 1`, string(id)).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// Get loads the timetable of the train.
func (r *ScheduleRepo) Get(ctx context.Context, id model.TrainID) (model.TrainTimetable, error) {
    row := r.q.QueryRowContext(ctx,
        `SELECT train_id, seat_capacity, start_time, stations, durations, prices FROM trains WHERE train_id = ? LIMIT 1`,
        string(id))
    t, err := scanTimetable(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return model.TrainTimetable{}, ErrNotFound
    }
    return t, err
}

// Put inserts a new timetable.
func (r *ScheduleRepo) Put(ctx context.Context, t model.TrainTimetable) error {
    stations, durations, prices, err := EncodeSequences(t)
    if err != nil {
        return err
    }
    var start sql.NullString
    if t.StartTime != nil {
        start = sql.NullString{String: model.FormatClock(*t.StartTime), Valid: true}
    }
    _, err = r.q.ExecContext(ctx,
        `INSERT INTO trains (train_id, seat_capacity, start_time, stations, durations, prices) VALUES (?, ?, ?, ?, ?, ?)`,
        string(t.TrainID), t.SeatCapacity, start, stations, durations, prices)
    if isDuplicate(err) {
        return ErrDuplicate
    }
    return err
}

// Delete removes the timetable; deleting a missing train is not an error.
func (r *ScheduleRepo) Delete(ctx context.Context, id model.TrainID) error {
    _, err := r.q.ExecContext(ctx, `DELETE FROM trains WHERE train_id = ?`, string(id))
    return err
}

// List returns all timetables ordered by train id.
func (r *ScheduleRepo) List(ctx context.Context) ([]model.TrainTimetable, error) {
    rows, err := r.q.QueryContext(ctx,
        `SELECT train_id, seat_capacity, start_time, stations, durations, prices FROM trains ORDER BY train_id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.TrainTimetable
    for rows.Next() {
        t, err := scanTimetable(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

func scanTimetable(scan func(dest ...any) error) (model.TrainTimetable, error) {
    var (
        t                            model.TrainTimetable
        id                           string
        start                        sql.NullString
        stations, durations, prices string
    )
    if err := scan(&id, &t.SeatCapacity, &start, &stations, &durations, &prices); err != nil {
        return model.TrainTimetable{}, err
    }
    t.TrainID = model.TrainID(id)
    if start.Valid {
        d, err := model.ParseClock(start.String)
        if err != nil {
            return model.TrainTimetable{}, err
        }
        t.StartTime = &d
    }
    if err := DecodeSequences(&t, stations, durations, prices); err != nil {
        return model.TrainTimetable{}, err
    }
    return t, nil
}

// EncodeSequences renders the three per-train sequences as JSON arrays.
// The SQLite backend stores them the same way.
func EncodeSequences(t model.TrainTimetable) (string, string, string, error) {
    s, err := json.Marshal(t.Stations)
    if err != nil {
        return "", "", "", err
    }
    d, err := json.Marshal(t.Durations)
    if err != nil {
        return "", "", "", err
    }
    p, err := json.Marshal(t.Prices)
    if err != nil {
        return "", "", "", err
    }
    return string(s), string(d), string(p), nil
}

// DecodeSequences is the inverse of EncodeSequences.
func DecodeSequences(t *model.TrainTimetable, stations, durations, prices string) error {
    if err := json.Unmarshal([]byte(stations), &t.Stations); err != nil {
        return err
    }
    if err := json.Unmarshal([]byte(durations), &t.Durations); err != nil {
        return err
    }
    return json.Unmarshal([]byte(prices), &t.Prices)
}
