// Package sensor ingests bin fill-level readings pushed by the ESP32 units
// and derives a per-bin status. Only the latest reading per bin is kept;
// there is no history and no persistence.
package sensor

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Fill-level thresholds, in percent of bin capacity.
const (
	// FullThreshold marks a bin that must be emptied before further use.
	FullThreshold = 90.0
	// WarningThreshold marks a bin approaching capacity.
	WarningThreshold = 75.0
)

// Bin status values reported to clients.
const (
	StatusNormal  = "normal"
	StatusWarning = "warning"
	StatusFull    = "full"
)

// Reading is one sensor report from a bin unit. Temperature and humidity
// are optional; units that lack those sensors send null.
type Reading struct {
	SensorID    string   `json:"sensor_id"`
	Distance    float64  `json:"distance"`
	BinLevel    float64  `json:"bin_level"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Location    string   `json:"location"`
	Timestamp   string   `json:"timestamp"`
}

// Validate checks the fields the server depends on.
func (r Reading) Validate() error {
	if r.SensorID == "" {
		return fmt.Errorf("sensor_id is required")
	}
	if r.BinLevel < 0 || r.BinLevel > 100 {
		return fmt.Errorf("bin_level %.1f out of range [0,100]", r.BinLevel)
	}
	return nil
}

// BinStatus is the derived state of one bin.
type BinStatus struct {
	BinID       string  `json:"bin_id"`
	Level       float64 `json:"level"`
	Status      string  `json:"status"`
	Location    string  `json:"location,omitempty"`
	LastUpdated string  `json:"last_updated"`
}

// StatusForLevel maps a fill level to a status string.
func StatusForLevel(level float64) string {
	switch {
	case level >= FullThreshold:
		return StatusFull
	case level >= WarningThreshold:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Registry holds the latest status per bin. Safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	bins map[string]BinStatus
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bins: make(map[string]BinStatus)}
}

// Process derives the bin status for r, stores it as the bin's latest
// state, and returns it.
func (g *Registry) Process(r Reading) BinStatus {
	status := BinStatus{
		BinID:       r.SensorID,
		Level:       r.BinLevel,
		Status:      StatusForLevel(r.BinLevel),
		Location:    r.Location,
		LastUpdated: r.Timestamp,
	}

	g.mu.Lock()
	g.bins[r.SensorID] = status
	g.mu.Unlock()

	if status.Status != StatusNormal {
		log.Warn().
			Str("bin_id", status.BinID).
			Float64("level", status.Level).
			Str("status", status.Status).
			Msg("Bin approaching or at capacity")
	}
	return status
}

// List returns a copy of the latest status for every known bin.
func (g *Registry) List() []BinStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]BinStatus, 0, len(g.bins))
	for _, b := range g.bins {
		out = append(out, b)
	}
	return out
}
