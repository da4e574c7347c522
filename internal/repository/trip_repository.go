package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-ticketing/internal/model"
)

// TripRepo persists the trip ledger in the `trips` table.  Each row is one
// purchase of one segment by one user.
type TripRepo struct {
    q querier
}

// NewTripRepo returns a TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{q: db} }

// Find lists the user's trips in purchase order.
func (r *TripRepo) Find(ctx context.Context, userID uint64) ([]model.TripRecord, error) {
    const q = `SELECT id, train_id, departure_station, arrival_station, ticket_count, duration, price, departure_time, arrival_time
               FROM trips WHERE user_id = ? ORDER BY id`
    rows, err := r.q.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var trips []model.TripRecord
    for rows.Next() {
        var (
            t              model.TripRecord
            train          string
            depart, arrive string
        )
        if err := rows.Scan(&t.ID, &train, &t.DepartureStation, &t.ArrivalStation, &t.TicketCount,
            &t.Duration, &t.Price, &depart, &arrive); err != nil {
            return nil, err
        }
        t.TrainID = model.TrainID(train)
        if t.DepartureTime, err = model.ParseMoment(depart); err != nil {
            return nil, err
        }
        if t.ArrivalTime, err = model.ParseMoment(arrive); err != nil {
            return nil, err
        }
        trips = append(trips, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return trips, nil
}

// Insert appends a trip to the user's ledger and returns it with its ID.
func (r *TripRepo) Insert(ctx context.Context, userID uint64, t model.TripRecord) (model.TripRecord, error) {
    const q = `INSERT INTO trips (user_id, train_id, departure_station, arrival_station, ticket_count, duration, price, departure_time, arrival_time)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.q.ExecContext(ctx, q, userID, string(t.TrainID), int(t.DepartureStation), int(t.ArrivalStation),
        t.TicketCount, t.Duration, t.Price, model.FormatMoment(t.DepartureTime), model.FormatMoment(t.ArrivalTime))
    if err != nil {
        return model.TripRecord{}, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return model.TripRecord{}, err
    }
    t.ID = id
    return t, nil
}

// Remove deletes the trip row owned by userID.
func (r *TripRepo) Remove(ctx context.Context, userID uint64, t model.TripRecord) error {
    res, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = ? AND user_id = ?`, t.ID, userID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}
