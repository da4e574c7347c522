package config

import (
	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/graph"
)

// LoadEngineConfig reads the booking engine limits.
//
//	MAX_STATIONS          station ids lie in [0, MAX_STATIONS)       (1000)
//	MAX_PASSING_STATIONS  stations per timetable                      (30)
//	ADMIN_PRIVILEGE       privilege needed for admin operations       (10)
//	BUSY_THRESHOLD        queue length above which the engine drains  (1)
//	MAX_ROUTE_DEPTH       sections per enumerated route, 0 unbounded  (0)
//	MAX_ROUTES            routes per enumeration, 0 unbounded         (1000)
func LoadEngineConfig() booking.Config {
	cfg := booking.Config{
		MaxStations:        envInt("MAX_STATIONS", 1000),
		MaxPassingStations: envInt("MAX_PASSING_STATIONS", 30),
		AdminPrivilege:     envInt("ADMIN_PRIVILEGE", 10),
		BusyThreshold:      envInt("BUSY_THRESHOLD", 1),
		PathLimits: graph.PathLimits{
			MaxDepth: envInt("MAX_ROUTE_DEPTH", 0),
			MaxPaths: envInt("MAX_ROUTES", 1000),
		},
	}
	if cfg.MaxStations < 1 {
		cfg.MaxStations = 1
	}
	if cfg.MaxPassingStations < 2 {
		cfg.MaxPassingStations = 2
	}
	if cfg.BusyThreshold < 0 {
		cfg.BusyThreshold = 0
	}
	return cfg
}
