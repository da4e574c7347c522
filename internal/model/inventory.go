package model

import "time"

// InventoryKey addresses one inventory row: the seats of one train leaving
// one station at one moment.
type InventoryKey struct {
    TrainID          TrainID
    DepartureTime    time.Time
    DepartureStation StationID
}

// InventoryRecord is the remaining-seat counter for one segment of one run
// of a train.  Rows are created in bulk when tickets are released and
// deleted in bulk when they expire; RemainingSeats is the only field that
// changes in between and it never drops below zero.
//
// Fields:
//  TrainID          – train the seats belong to.
//  RunDate          – calendar date the run departs its origin on.
//  DepartureTime    – moment the train leaves DepartureStation.
//  DepartureStation – station the segment starts at.
//  ArrivalStation   – station the segment ends at.
//  RemainingSeats   – seats still for sale.
//  Price            – fare of the segment.
//  Duration         – running time of the segment in minutes.
type InventoryRecord struct {
    TrainID          TrainID   `json:"train_id"`
    RunDate          time.Time `json:"-"`
    DepartureTime    time.Time `json:"-"`
    DepartureStation StationID `json:"departure_station"`
    ArrivalStation   StationID `json:"arrival_station"`
    RemainingSeats   int       `json:"remaining_seats"`
    Price            int       `json:"price"`
    Duration         int       `json:"duration"`
}

// Key returns the inventory key of the record.
func (r InventoryRecord) Key() InventoryKey {
    return InventoryKey{TrainID: r.TrainID, DepartureTime: r.DepartureTime, DepartureStation: r.DepartureStation}
}
