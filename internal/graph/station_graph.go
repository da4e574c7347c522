// Package graph holds the railway network: a directed multigraph of route
// sections with a union-find index for reachability, lazy simple-path
// enumeration and a deterministic shortest path search.
package graph

import (
	"iter"
	"math"
	"slices"
	"sync"

	"github.com/iliyamo/railway-ticketing/internal/model"
)

// Cost selects the edge weight used by ShortestPath.
type Cost int

const (
	ByPrice Cost = iota
	ByDuration
)

func (c Cost) weight(s model.RouteSection) int64 {
	if c == ByDuration {
		return int64(s.Duration)
	}
	return int64(s.Price)
}

func (c Cost) String() string {
	if c == ByDuration {
		return "duration"
	}
	return "price"
}

// PathLimits bounds Paths.  Zero values mean unbounded.
//
// Fields:
//  MaxDepth – maximum number of sections in a produced path.
//  MaxPaths – maximum number of paths produced per traversal.
type PathLimits struct {
	MaxDepth int
	MaxPaths int
}

// Path is a ShortestPath result.  Legs[i] is the section travelled from
// Stations[i] to Stations[i+1].
type Path struct {
	Stations []model.StationID   `json:"stations"`
	Legs     []model.RouteSection `json:"legs"`
	Cost     int64                `json:"cost"`
}

// StationGraph is safe for concurrent use.  Queries share a read lock;
// AddRoute takes the write lock.  The union-find forest compresses paths on
// every lookup, so it sits behind its own mutex.
type StationGraph struct {
	mu    sync.RWMutex
	adj   [][]model.RouteSection
	limit PathLimits

	setMu sync.Mutex
	set   *DisjointSet
}

// New returns an empty graph over stations [0, maxStations).
func New(maxStations int, limit PathLimits) *StationGraph {
	return &StationGraph{
		adj:   make([][]model.RouteSection, maxStations),
		limit: limit,
		set:   NewDisjointSet(maxStations),
	}
}

// Size returns the number of station slots.
func (g *StationGraph) Size() int { return len(g.adj) }

func (g *StationGraph) valid(id model.StationID) bool {
	return id >= 0 && int(id) < len(g.adj)
}

// AddRoute appends a section leaving departure and joins both stations'
// components.  Both ids must be in range; the caller validates them.
func (g *StationGraph) AddRoute(departure, arrival model.StationID, duration, price int, train model.TrainID) {
	g.mu.Lock()
	g.adj[departure] = append(g.adj[departure], model.RouteSection{
		TrainID:  train,
		Arrival:  arrival,
		Price:    price,
		Duration: duration,
	})
	g.mu.Unlock()

	g.setMu.Lock()
	g.set.Union(int(departure), int(arrival))
	g.setMu.Unlock()
}

// Sections returns a copy of the sections leaving departure.
func (g *StationGraph) Sections(departure model.StationID) []model.RouteSection {
	if !g.valid(departure) {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]model.RouteSection(nil), g.adj[departure]...)
}

// Connected reports whether a and b have ever been joined by a chain of
// sections, ignoring direction.  Every station is connected to itself.
func (g *StationGraph) Connected(a, b model.StationID) bool {
	if !g.valid(a) || !g.valid(b) {
		return false
	}
	g.setMu.Lock()
	defer g.setMu.Unlock()
	return g.set.Connected(int(a), int(b))
}

// neighbours snapshots the distinct arrival stations of every departure in
// insertion order.  Parallel sections collapse into one neighbour so each
// station path is produced once.
func (g *StationGraph) neighbours() [][]model.StationID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([][]model.StationID, len(g.adj))
	for from, sections := range g.adj {
		if len(sections) == 0 {
			continue
		}
		seen := make(map[model.StationID]bool, len(sections))
		for _, s := range sections {
			if !seen[s.Arrival] {
				seen[s.Arrival] = true
				out[from] = append(out[from], s.Arrival)
			}
		}
	}
	return out
}

// Paths yields every simple path from departure to arrival in section
// insertion order.  The traversal uses an explicit stack and starts over on
// every range loop; it stops at the configured PathLimits.
func (g *StationGraph) Paths(departure, arrival model.StationID) iter.Seq[[]model.StationID] {
	return func(yield func([]model.StationID) bool) {
		if !g.valid(departure) || !g.valid(arrival) {
			return
		}
		if departure == arrival {
			yield([]model.StationID{departure})
			return
		}

		adj := g.neighbours()
		type frame struct {
			station model.StationID
			next    int
		}
		onPath := make([]bool, len(adj))
		stack := []frame{{station: departure}}
		onPath[departure] = true
		produced := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			next := adj[top.station]
			if top.next >= len(next) || (g.limit.MaxDepth > 0 && len(stack) > g.limit.MaxDepth) {
				onPath[top.station] = false
				stack = stack[:len(stack)-1]
				continue
			}
			n := next[top.next]
			top.next++
			if onPath[n] {
				continue
			}
			if n == arrival {
				path := make([]model.StationID, 0, len(stack)+1)
				for _, f := range stack {
					path = append(path, f.station)
				}
				path = append(path, arrival)
				if !yield(path) {
					return
				}
				produced++
				if g.limit.MaxPaths > 0 && produced >= g.limit.MaxPaths {
					return
				}
				continue
			}
			onPath[n] = true
			stack = append(stack, frame{station: n})
		}
	}
}

// ShortestPath runs Dijkstra with a linear scan for the closest unsettled
// station.  Among equally close stations the lowest id is settled first,
// and a station keeps the first predecessor that reached its final
// distance, so the result is reproducible.  ok is false when arrival is
// unreachable.
func (g *StationGraph) ShortestPath(departure, arrival model.StationID, cost Cost) (Path, bool) {
	if !g.valid(departure) || !g.valid(arrival) {
		return Path{}, false
	}
	if departure == arrival {
		return Path{Stations: []model.StationID{departure}}, true
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	const inf = math.MaxInt64
	n := len(g.adj)
	dist := make([]int64, n)
	known := make([]bool, n)
	prev := make([]int, n)
	via := make([]model.RouteSection, n)
	for i := range dist {
		dist[i] = inf
		prev[i] = -1
	}
	dist[departure] = 0

	for {
		u := -1
		for i := 0; i < n; i++ {
			if !known[i] && dist[i] != inf && (u < 0 || dist[i] < dist[u]) {
				u = i
			}
		}
		if u < 0 || u == int(arrival) {
			break
		}
		known[u] = true
		for _, s := range g.adj[u] {
			v := int(s.Arrival)
			if known[v] {
				continue
			}
			if d := dist[u] + cost.weight(s); d < dist[v] {
				dist[v] = d
				prev[v] = u
				via[v] = s
			}
		}
	}

	if dist[arrival] == inf {
		return Path{}, false
	}
	var (
		stations []model.StationID
		legs     []model.RouteSection
	)
	for v := int(arrival); v != int(departure); v = prev[v] {
		stations = append(stations, model.StationID(v))
		legs = append(legs, via[v])
	}
	stations = append(stations, departure)
	slices.Reverse(stations)
	slices.Reverse(legs)
	return Path{Stations: stations, Legs: legs, Cost: dist[arrival]}, true
}

