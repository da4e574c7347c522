package model

import "time"

// TripRecord is a ledger entry for tickets a user bought on one segment.
// It is created by a fulfilled purchase and removed (or decremented) by a
// matching refund.  ID is assigned by the ledger on insert.
type TripRecord struct {
    ID               int64     `json:"id"`
    TrainID          TrainID   `json:"train_id"`
    DepartureStation StationID `json:"departure_station"`
    ArrivalStation   StationID `json:"arrival_station"`
    TicketCount      int       `json:"ticket_count"`
    Duration         int       `json:"duration"`
    Price            int       `json:"price"`
    DepartureTime    time.Time `json:"-"`
    ArrivalTime      time.Time `json:"-"`
}

// Matches reports whether the trip covers the given train, station and
// departure moment with at least count tickets.
func (r TripRecord) Matches(train TrainID, station StationID, departure time.Time, count int) bool {
    return r.TrainID == train &&
        r.DepartureStation == station &&
        r.DepartureTime.Equal(departure) &&
        r.TicketCount >= count
}
