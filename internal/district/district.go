package district

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

//go:embed districts.json
var districtsJSON []byte

var (
	// ErrNotFound is returned when no district matches the requested name.
	ErrNotFound = errors.New("district not found")
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this point in logs and stores.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// District is one administrative district. Districts are loaded once at
// startup from the embedded dataset and never mutated.
type District struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	BnName   string      `json:"bn_name"`
	Location Coordinates `json:"location"`
}

// Directory is the read-only lookup table over all known districts.
type Directory struct {
	all    []District
	byName map[string]District
}

// NewDirectory parses the embedded district dataset.
func NewDirectory() (*Directory, error) {
	var raw struct {
		Districts []struct {
			ID     string  `json:"id"`
			Name   string  `json:"name"`
			BnName string  `json:"bn_name"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
		} `json:"districts"`
	}
	if err := json.Unmarshal(districtsJSON, &raw); err != nil {
		return nil, fmt.Errorf("parse district dataset: %w", err)
	}
	if len(raw.Districts) == 0 {
		return nil, errors.New("district dataset is empty")
	}

	d := &Directory{
		all:    make([]District, 0, len(raw.Districts)),
		byName: make(map[string]District, len(raw.Districts)),
	}
	for _, r := range raw.Districts {
		if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
			return nil, fmt.Errorf("district %q has out-of-range coordinates", r.Name)
		}
		dist := District{
			ID:     r.ID,
			Name:   r.Name,
			BnName: r.BnName,
			Location: Coordinates{
				Latitude:  r.Lat,
				Longitude: r.Lon,
			},
		}
		d.all = append(d.all, dist)
		d.byName[strings.ToLower(dist.Name)] = dist
	}
	return d, nil
}

// ByName looks up a district by display name, case-insensitively.
func (d *Directory) ByName(name string) (District, error) {
	dist, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return District{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return dist, nil
}

// All returns every known district.
func (d *Directory) All() []District {
	return d.all
}

// Len returns the number of known districts.
func (d *Directory) Len() int {
	return len(d.all)
}
