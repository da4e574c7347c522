package model

import (
    "errors"
    "fmt"
    "time"
)

// Timetable validation errors.  Callers map them to a malformed-input
// failure; ErrStationOutOfRange is reported separately so that the caller
// can distinguish an unknown station from a structurally bad timetable.
var (
    ErrTooFewStations    = errors.New("timetable needs at least two stations")
    ErrTooManyStations   = errors.New("timetable exceeds the passing station limit")
    ErrSegmentMismatch   = errors.New("segment arrays must have one entry per segment")
    ErrNegativeSegment   = errors.New("segment duration and price must not be negative")
    ErrNoSeats           = errors.New("seat capacity must be positive")
    ErrStationOutOfRange = errors.New("station id out of range")
)

// TrainTimetable is the ordered list of stations a single train visits with
// the running time and fare of every segment between consecutive stations.
// Durations[i] and Prices[i] describe the segment Stations[i] -> Stations[i+1],
// so both slices hold exactly len(Stations)-1 entries.
//
// Fields:
//  TrainID      – train identifier, unique across the schedule store.
//  SeatCapacity – seats released per segment for every run.
//  StartTime    – departure clock time at the origin (nil when unset).
//  Stations     – visited stations in order.
//  Durations    – per-segment running time in minutes.
//  Prices       – per-segment fare.
type TrainTimetable struct {
    TrainID      TrainID        `json:"train_id"`
    SeatCapacity int            `json:"seat_capacity"`
    StartTime    *time.Duration `json:"start_time,omitempty"`
    Stations     []StationID    `json:"stations"`
    Durations    []int          `json:"durations"`
    Prices       []int          `json:"prices"`
}

// StationCount returns the number of passing stations.
func (t *TrainTimetable) StationCount() int { return len(t.Stations) }

// SegmentCount returns the number of segments (StationCount-1, or 0).
func (t *TrainTimetable) SegmentCount() int {
    if len(t.Stations) < 2 {
        return 0
    }
    return len(t.Stations) - 1
}

// AddStation appends a station.  Once a segment exists between the previous
// last station and the new one, the segment arrays grow by one zero entry
// that the caller fills in.
func (t *TrainTimetable) AddStation(id StationID) {
    t.Stations = append(t.Stations, id)
    if len(t.Stations) >= 2 {
        t.Durations = append(t.Durations, 0)
        t.Prices = append(t.Prices, 0)
    }
}

// InsertStation inserts a station at index i, shifting later stations back.
// The segment leaving the new station gets zero duration and price.
func (t *TrainTimetable) InsertStation(i int, id StationID) error {
    if i < 0 || i > len(t.Stations) {
        return fmt.Errorf("insert station: index %d out of range", i)
    }
    t.Stations = append(t.Stations, 0)
    copy(t.Stations[i+1:], t.Stations[i:])
    t.Stations[i] = id
    if len(t.Stations) < 2 {
        return nil
    }
    seg := i
    if seg > len(t.Durations) {
        seg = len(t.Durations)
    }
    t.Durations = insertInt(t.Durations, seg)
    t.Prices = insertInt(t.Prices, seg)
    return nil
}

// RemoveStation removes the station at index i, shifting later stations
// forward.  The segment that started at i is dropped (or, for the last
// station, the segment ending there).
func (t *TrainTimetable) RemoveStation(i int) error {
    if i < 0 || i >= len(t.Stations) {
        return fmt.Errorf("remove station: index %d out of range", i)
    }
    t.Stations = append(t.Stations[:i], t.Stations[i+1:]...)
    if len(t.Durations) == 0 {
        return nil
    }
    seg := i
    if seg >= len(t.Durations) {
        seg = len(t.Durations) - 1
    }
    t.Durations = append(t.Durations[:seg], t.Durations[seg+1:]...)
    t.Prices = append(t.Prices[:seg], t.Prices[seg+1:]...)
    return nil
}

// FindStation returns the index of the first occurrence of id among the
// stations a segment departs from.  The terminal station is never
// returned because no ticket can be sold from it.
func (t *TrainTimetable) FindStation(id StationID) (int, bool) {
    for i := 0; i+1 < len(t.Stations); i++ {
        if t.Stations[i] == id {
            return i, true
        }
    }
    return -1, false
}

// DepartureTimeAt computes when the train leaves the station at index i on
// the run that starts on baseDate.  The origin departs at StartTime on
// baseDate's calendar day; without a StartTime the origin departs at
// baseDate itself.  Dwell times are not modelled.
func (t *TrainTimetable) DepartureTimeAt(i int, baseDate time.Time) time.Time {
    origin := baseDate.UTC()
    if t.StartTime != nil {
        origin = DateOf(baseDate).Add(*t.StartTime)
    }
    total := 0
    for j := 0; j < i && j < len(t.Durations); j++ {
        total += t.Durations[j]
    }
    return origin.Add(time.Duration(total) * time.Minute)
}

// Validate checks the structural invariants of the timetable against the
// configured station range and passing station limit.
func (t *TrainTimetable) Validate(maxStations, maxPassing int) error {
    if t.SeatCapacity <= 0 {
        return ErrNoSeats
    }
    if len(t.Stations) < 2 {
        return ErrTooFewStations
    }
    if maxPassing > 0 && len(t.Stations) > maxPassing {
        return ErrTooManyStations
    }
    if len(t.Durations) != len(t.Stations)-1 || len(t.Prices) != len(t.Stations)-1 {
        return ErrSegmentMismatch
    }
    for _, s := range t.Stations {
        if s < 0 || int(s) >= maxStations {
            return fmt.Errorf("%w: %d", ErrStationOutOfRange, s)
        }
    }
    for i := range t.Durations {
        if t.Durations[i] < 0 || t.Prices[i] < 0 {
            return ErrNegativeSegment
        }
    }
    return nil
}

func insertInt(s []int, i int) []int {
    s = append(s, 0)
    copy(s[i+1:], s[i:])
    s[i] = 0
    return s
}
