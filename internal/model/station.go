package model

// StationID identifies a station.  Valid ids lie in [0, MaxStations); the
// name of a station is resolved outside the core by the station directory.
type StationID int

// TrainID identifies a train (e.g. "G1234").  It is also the key of the
// train's timetable in the schedule store.
type TrainID string

// RouteSection is one directed edge of the railway graph.  The departure
// station is implicit: sections are stored in the adjacency list of the
// station they leave from.  Sections are immutable once created.
//
// Fields:
//  TrainID  – train that runs this section.
//  Arrival  – station the section ends at.
//  Price    – fare for riding the section.
//  Duration – running time in minutes.
type RouteSection struct {
    TrainID  TrainID   `json:"train_id"`
    Arrival  StationID `json:"arrival_station"`
    Price    int       `json:"price"`
    Duration int       `json:"duration"`
}
