package geospatial

import "sort"

// ZoomLevel maps every distance strictly below MaxKm to Zoom.
type ZoomLevel struct {
	MaxKm float64 `mapstructure:"max_km" json:"max_km"`
	Zoom  int     `mapstructure:"zoom" json:"zoom"`
}

// ZoomTable is a step function from route length to map zoom.
type ZoomTable struct {
	Levels   []ZoomLevel
	Fallback int
}

// DefaultZoomTable returns the thresholds the map UI was tuned with.
func DefaultZoomTable() ZoomTable {
	return ZoomTable{
		Levels: []ZoomLevel{
			{MaxKm: 500, Zoom: 10},
			{MaxKm: 1000, Zoom: 8},
			{MaxKm: 2000, Zoom: 7},
			{MaxKm: 5000, Zoom: 5},
		},
		Fallback: 3,
	}
}

// NewZoomTable copies levels and sorts them by ascending threshold.
func NewZoomTable(levels []ZoomLevel, fallback int) ZoomTable {
	sorted := make([]ZoomLevel, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MaxKm < sorted[j].MaxKm })
	return ZoomTable{Levels: sorted, Fallback: fallback}
}

// Classify returns the zoom of the first level whose threshold exceeds distanceKm.
func (t ZoomTable) Classify(distanceKm float64) int {
	for _, l := range t.Levels {
		if distanceKm < l.MaxKm {
			return l.Zoom
		}
	}
	return t.Fallback
}
