package graph

import (
	"slices"
	"testing"

	"github.com/iliyamo/railway-ticketing/internal/model"
)

func collect(g *StationGraph, from, to model.StationID) [][]model.StationID {
	var out [][]model.StationID
	for p := range g.Paths(from, to) {
		out = append(out, p)
	}
	return out
}

func TestDisjointSetProperties(t *testing.T) {
	d := NewDisjointSet(10)
	d.Union(1, 2)
	d.Union(3, 4)
	d.Union(2, 3)
	for i := 0; i < 10; i++ {
		if !d.Connected(i, i) {
			t.Fatalf("%d not connected to itself", i)
		}
	}
	for _, pair := range [][2]int{{1, 4}, {4, 1}, {2, 3}, {1, 3}} {
		if !d.Connected(pair[0], pair[1]) {
			t.Errorf("Connected(%d, %d) = false", pair[0], pair[1])
		}
	}
	if d.Connected(1, 5) || d.Connected(5, 1) {
		t.Error("5 joined without a union")
	}
}

func TestConnectivityIsMonotonic(t *testing.T) {
	g := New(10, PathLimits{})
	g.AddRoute(1, 2, 30, 10, "T")
	if !g.Connected(1, 2) || !g.Connected(2, 1) {
		t.Fatal("1 and 2 not connected after AddRoute")
	}
	if g.Connected(1, 3) {
		t.Fatal("1 and 3 connected before any route")
	}
	g.AddRoute(3, 2, 5, 5, "U")
	g.AddRoute(7, 8, 5, 5, "V")
	if !g.Connected(1, 3) {
		t.Fatal("connectivity is not transitive")
	}
	if !g.Connected(1, 2) {
		t.Fatal("connectivity decreased")
	}
	if g.Connected(1, 7) {
		t.Fatal("separate components merged")
	}
	if g.Connected(1, 42) {
		t.Fatal("out-of-range station reported connected")
	}
}

func TestShortestPath(t *testing.T) {
	g := New(10, PathLimits{})
	g.AddRoute(1, 2, 30, 10, "T")
	g.AddRoute(2, 3, 40, 15, "T")

	p, ok := g.ShortestPath(1, 3, ByPrice)
	if !ok {
		t.Fatal("no path by price")
	}
	if !slices.Equal(p.Stations, []model.StationID{1, 2, 3}) || p.Cost != 25 {
		t.Fatalf("by price: %v cost %d", p.Stations, p.Cost)
	}
	if len(p.Legs) != 2 || p.Legs[1].Arrival != 3 || p.Legs[0].TrainID != "T" {
		t.Fatalf("legs: %+v", p.Legs)
	}

	p, ok = g.ShortestPath(1, 3, ByDuration)
	if !ok || p.Cost != 70 {
		t.Fatalf("by duration: %+v, %v", p, ok)
	}
}

func TestShortestPathPicksCheaperCriterion(t *testing.T) {
	g := New(10, PathLimits{})
	// Direct is fast but expensive; the detour is slow but cheap.
	g.AddRoute(1, 4, 10, 100, "FAST")
	g.AddRoute(1, 2, 50, 5, "SLOW")
	g.AddRoute(2, 4, 50, 5, "SLOW")

	byPrice, _ := g.ShortestPath(1, 4, ByPrice)
	if !slices.Equal(byPrice.Stations, []model.StationID{1, 2, 4}) || byPrice.Cost != 10 {
		t.Fatalf("by price: %+v", byPrice)
	}
	byTime, _ := g.ShortestPath(1, 4, ByDuration)
	if !slices.Equal(byTime.Stations, []model.StationID{1, 4}) || byTime.Cost != 10 {
		t.Fatalf("by duration: %+v", byTime)
	}
}

func TestShortestPathTieBreakLowestID(t *testing.T) {
	g := New(10, PathLimits{})
	// Two equal-cost routes 0->5->9 and 0->3->9; station 3 settles first.
	g.AddRoute(0, 5, 1, 1, "A")
	g.AddRoute(0, 3, 1, 1, "B")
	g.AddRoute(5, 9, 1, 1, "A")
	g.AddRoute(3, 9, 1, 1, "B")
	for i := 0; i < 5; i++ {
		p, ok := g.ShortestPath(0, 9, ByPrice)
		if !ok || !slices.Equal(p.Stations, []model.StationID{0, 3, 9}) {
			t.Fatalf("run %d: %+v", i, p)
		}
	}
}

func TestDisconnected(t *testing.T) {
	g := New(10, PathLimits{})
	g.AddRoute(1, 2, 30, 10, "T")
	g.AddRoute(5, 6, 30, 10, "U")
	if _, ok := g.ShortestPath(1, 6, ByPrice); ok {
		t.Fatal("path found between disconnected stations")
	}
	if paths := collect(g, 1, 6); len(paths) != 0 {
		t.Fatalf("paths between disconnected stations: %v", paths)
	}
	// Reachability is directed for path search.
	if _, ok := g.ShortestPath(2, 1, ByPrice); ok {
		t.Fatal("path found against section direction")
	}
}

func TestPathsEnumeration(t *testing.T) {
	g := New(10, PathLimits{})
	g.AddRoute(1, 2, 1, 1, "A")
	g.AddRoute(1, 3, 1, 1, "B")
	g.AddRoute(2, 4, 1, 1, "A")
	g.AddRoute(3, 4, 1, 1, "B")
	g.AddRoute(2, 3, 1, 1, "C")
	g.AddRoute(3, 1, 1, 1, "D") // cycle back to the origin
	g.AddRoute(1, 2, 9, 9, "E") // parallel section

	want := [][]model.StationID{
		{1, 2, 4},
		{1, 2, 3, 4},
		{1, 3, 4},
	}
	got := collect(g, 1, 4)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("path %d = %v, want %v", i, got[i], want[i])
		}
	}

	// Restartable: a second traversal yields the same sequence.
	if again := collect(g, 1, 4); len(again) != len(want) {
		t.Fatalf("second traversal: %v", again)
	}
	if self := collect(g, 4, 4); len(self) != 1 || !slices.Equal(self[0], []model.StationID{4}) {
		t.Fatalf("self path: %v", self)
	}
}

func TestPathsLimits(t *testing.T) {
	build := func(limit PathLimits) *StationGraph {
		g := New(10, limit)
		g.AddRoute(1, 2, 1, 1, "A")
		g.AddRoute(2, 3, 1, 1, "A")
		g.AddRoute(1, 3, 1, 1, "B")
		return g
	}
	if got := collect(build(PathLimits{MaxDepth: 1}), 1, 3); len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("depth 1: %v", got)
	}
	if got := collect(build(PathLimits{MaxPaths: 1}), 1, 3); len(got) != 1 || !slices.Equal(got[0], []model.StationID{1, 2, 3}) {
		t.Fatalf("max paths 1: %v", got)
	}

	// Breaking out of the range loop stops the traversal.
	n := 0
	for range build(PathLimits{}).Paths(1, 3) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("early break yielded %d paths", n)
	}
}
