package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/railway-ticketing/internal/model"
)

// InventoryRepo persists remaining-seat counters in the `tickets` table.
// Moments are stored in their canonical "HH:MM_MM-DD" text form and the
// run date as "MM-DD"; (train_id, departure_time, departure_station) is a
// unique key.
type InventoryRepo struct {
    q querier
    // lock appends FOR UPDATE to reads; set on transactional views only.
    lock bool
}

// NewInventoryRepo returns an InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{q: db} }

// Find loads the inventory row addressed by key.
func (r *InventoryRepo) Find(ctx context.Context, key model.InventoryKey) (model.InventoryRecord, error) {
    q := `SELECT train_id, run_date, departure_time, departure_station, arrival_station, seat_num, price, duration
          FROM tickets WHERE train_id = ? AND departure_time = ? AND departure_station = ? LIMIT 1`
    if r.lock {
        q += " FOR UPDATE"
    }
    var (
        rec                model.InventoryRecord
        train, run, depart string
    )
    err := r.q.QueryRowContext(ctx, q, string(key.TrainID), model.FormatMoment(key.DepartureTime), int(key.DepartureStation)).
        Scan(&train, &run, &depart, &rec.DepartureStation, &rec.ArrivalStation, &rec.RemainingSeats, &rec.Price, &rec.Duration)
    if errors.Is(err, sql.ErrNoRows) {
        return model.InventoryRecord{}, ErrNotFound
    }
    if err != nil {
        return model.InventoryRecord{}, err
    }
    rec.TrainID = model.TrainID(train)
    if rec.RunDate, err = model.ParseDate(run); err != nil {
        return model.InventoryRecord{}, err
    }
    if rec.DepartureTime, err = model.ParseMoment(depart); err != nil {
        return model.InventoryRecord{}, err
    }
    return rec, nil
}

// UpsertSeats applies delta with a guarded UPDATE so that the counter can
// never go negative even without a surrounding transaction.
func (r *InventoryRepo) UpsertSeats(ctx context.Context, key model.InventoryKey, delta int) (int, error) {
    res, err := r.q.ExecContext(ctx,
        `UPDATE tickets SET seat_num = seat_num + ?
         WHERE train_id = ? AND departure_time = ? AND departure_station = ? AND seat_num + ? >= 0`,
        delta, string(key.TrainID), model.FormatMoment(key.DepartureTime), int(key.DepartureStation), delta)
    if err != nil {
        return 0, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    rec, err := r.Find(ctx, key)
    if err != nil {
        return 0, err
    }
    if n == 0 {
        // Row exists (Find succeeded) but the guard rejected the delta.
        return 0, ErrInsufficientSeats
    }
    return rec.Price, nil
}

// BulkInsert inserts all records in one multi-row statement.
func (r *InventoryRepo) BulkInsert(ctx context.Context, records []model.InventoryRecord) error {
    if len(records) == 0 {
        return nil
    }
    var b strings.Builder
    b.WriteString(`INSERT INTO tickets (train_id, run_date, departure_time, departure_station, arrival_station, seat_num, price, duration) VALUES `)
    args := make([]interface{}, 0, len(records)*8)
    for i, rec := range records {
        if i > 0 {
            b.WriteString(",")
        }
        b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
        args = append(args, string(rec.TrainID), model.FormatDate(rec.RunDate), model.FormatMoment(rec.DepartureTime),
            int(rec.DepartureStation), int(rec.ArrivalStation), rec.RemainingSeats, rec.Price, rec.Duration)
    }
    _, err := r.q.ExecContext(ctx, b.String(), args...)
    if isDuplicate(err) {
        return ErrDuplicate
    }
    return err
}

// BulkDelete removes every row of one run of the train.
func (r *InventoryRepo) BulkDelete(ctx context.Context, id model.TrainID, runDate time.Time) (int, error) {
    res, err := r.q.ExecContext(ctx, `DELETE FROM tickets WHERE train_id = ? AND run_date = ?`,
        string(id), model.FormatDate(runDate))
    if err != nil {
        return 0, err
    }
    n, err := res.RowsAffected()
    return int(n), err
}
