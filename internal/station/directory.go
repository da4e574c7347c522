// Package station maps station ids to human-readable names.  The directory
// is loaded from a YAML file and is read-only afterwards.
package station

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/railway-ticketing/internal/model"
)

// Station is one directory entry.
type Station struct {
	ID   model.StationID `yaml:"id" json:"id"`
	Name string          `yaml:"name" json:"name"`
}

type file struct {
	Stations []Station `yaml:"stations"`
}

// Directory resolves station names and ids.  The zero value is an empty
// directory in which only numeric ids resolve.
type Directory struct {
	list   []Station
	byID   map[model.StationID]string
	byName map[string]model.StationID
}

// Load reads the directory from path.  An empty path yields an empty
// directory.
func Load(path string, maxStations int) (*Directory, error) {
	if path == "" {
		return &Directory{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station file: %w", err)
	}
	return Parse(data, maxStations)
}

// Parse builds a directory from YAML of the form
//
//	stations:
//	  - id: 1
//	    name: Beijing
//
// Ids must be unique and lie in [0, maxStations); names must be unique
// ignoring case.
func Parse(data []byte, maxStations int) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse station file: %w", err)
	}
	d := &Directory{
		byID:   make(map[model.StationID]string, len(f.Stations)),
		byName: make(map[string]model.StationID, len(f.Stations)),
	}
	for _, s := range f.Stations {
		s.Name = strings.TrimSpace(s.Name)
		if s.ID < 0 || int(s.ID) >= maxStations {
			return nil, fmt.Errorf("station %q: id %d out of range", s.Name, s.ID)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("station %d: name is required", s.ID)
		}
		if _, dup := d.byID[s.ID]; dup {
			return nil, fmt.Errorf("station id %d listed twice", s.ID)
		}
		key := strings.ToLower(s.Name)
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("station name %q listed twice", s.Name)
		}
		d.byID[s.ID] = s.Name
		d.byName[key] = s.ID
		d.list = append(d.list, s)
	}
	sort.Slice(d.list, func(i, j int) bool { return d.list[i].ID < d.list[j].ID })
	return d, nil
}

// Len returns the number of named stations.
func (d *Directory) Len() int { return len(d.list) }

// List returns the stations ordered by id.
func (d *Directory) List() []Station { return append([]Station(nil), d.list...) }

// Name returns the name of id, or its decimal form when unnamed.
func (d *Directory) Name(id model.StationID) string {
	if n, ok := d.byID[id]; ok {
		return n
	}
	return strconv.Itoa(int(id))
}

// Resolve accepts a numeric id or a station name.
func (d *Directory) Resolve(s string) (model.StationID, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return model.StationID(n), true
	}
	id, ok := d.byName[strings.ToLower(s)]
	return id, ok
}
