package model

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func sample() TrainTimetable {
	start := 8 * time.Hour
	return TrainTimetable{
		TrainID:      "G1",
		SeatCapacity: 2,
		StartTime:    &start,
		Stations:     []StationID{1, 2, 3},
		Durations:    []int{30, 40},
		Prices:       []int{10, 15},
	}
}

func TestDepartureTimeAt(t *testing.T) {
	tt := sample()
	base, _ := ParseMoment("13:00_06-01")
	want := []string{"08:00_06-01", "08:30_06-01", "09:10_06-01"}
	for i, w := range want {
		if got := FormatMoment(tt.DepartureTimeAt(i, base)); got != w {
			t.Errorf("DepartureTimeAt(%d) = %s, want %s", i, got, w)
		}
	}

	// Without a start time the origin leaves at the base moment itself.
	tt.StartTime = nil
	if got := FormatMoment(tt.DepartureTimeAt(2, base)); got != "14:10_06-01" {
		t.Errorf("no start time: %s", got)
	}

	// Runs cross midnight into the next day.
	late := 23*time.Hour + 50*time.Minute
	tt.StartTime = &late
	if got := FormatMoment(tt.DepartureTimeAt(1, base)); got != "00:20_06-02" {
		t.Errorf("overnight: %s", got)
	}
}

func TestFindStation(t *testing.T) {
	tt := sample()
	tt.Stations = []StationID{1, 2, 1, 3}
	tt.Durations = []int{1, 1, 1}
	tt.Prices = []int{1, 1, 1}
	if i, ok := tt.FindStation(1); !ok || i != 0 {
		t.Fatalf("FindStation(1) = %d, %v; want first occurrence", i, ok)
	}
	if _, ok := tt.FindStation(3); ok {
		t.Fatal("terminal station reported as a departure position")
	}
	if _, ok := tt.FindStation(9); ok {
		t.Fatal("unknown station found")
	}
}

func TestEditStations(t *testing.T) {
	var tt TrainTimetable
	tt.AddStation(1)
	tt.AddStation(3)
	if len(tt.Durations) != 1 || len(tt.Prices) != 1 {
		t.Fatalf("segments after two AddStation: %v %v", tt.Durations, tt.Prices)
	}
	tt.Durations[0], tt.Prices[0] = 50, 20
	if err := tt.InsertStation(1, 2); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tt.Stations, []StationID{1, 2, 3}) || tt.SegmentCount() != 2 || len(tt.Durations) != 2 {
		t.Fatalf("after insert: %+v", tt)
	}
	if err := tt.RemoveStation(0); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tt.Stations, []StationID{2, 3}) || len(tt.Durations) != 1 || len(tt.Prices) != 1 {
		t.Fatalf("after remove: %+v", tt)
	}
	if err := tt.RemoveStation(5); err == nil {
		t.Fatal("RemoveStation out of range succeeded")
	}
	if err := tt.InsertStation(-1, 4); err == nil {
		t.Fatal("InsertStation out of range succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TrainTimetable)
		want   error
	}{
		{"ok", func(*TrainTimetable) {}, nil},
		{"no seats", func(tt *TrainTimetable) { tt.SeatCapacity = 0 }, ErrNoSeats},
		{"one station", func(tt *TrainTimetable) {
			tt.Stations, tt.Durations, tt.Prices = []StationID{1}, nil, nil
		}, ErrTooFewStations},
		{"too many", func(tt *TrainTimetable) {
			tt.Stations = []StationID{1, 2, 3, 4, 5}
			tt.Durations, tt.Prices = []int{1, 1, 1, 1}, []int{1, 1, 1, 1}
		}, ErrTooManyStations},
		{"mismatch", func(tt *TrainTimetable) { tt.Prices = []int{1} }, ErrSegmentMismatch},
		{"out of range", func(tt *TrainTimetable) { tt.Stations[2] = 100 }, ErrStationOutOfRange},
		{"negative", func(tt *TrainTimetable) { tt.Durations[1] = -1 }, ErrNegativeSegment},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := sample()
			tc.mutate(&tt)
			err := tt.Validate(100, 4)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate = %v, want %v", err, tc.want)
			}
		})
	}
}
