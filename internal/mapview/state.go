// Package mapview holds the rendered map: styled GeoJSON layers, the layer
// catalog, and the legend, owned by a single State value.
package mapview

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
)

// Layer identifiers used in URLs.
const (
	LayerEarthquakes    = "earthquakes"
	LayerTectonicPlates = "tectonic-plates"
)

var (
	// ErrUnknownLayer is returned for a layer ID that is not in the catalog.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrLayerNotLoaded is returned when a layer has never been fetched successfully.
	ErrLayerNotLoaded = errors.New("layer not loaded")
)

// overlayOrder lists layer IDs and display names in layer-control order.
var overlayOrder = []struct{ id, name string }{
	{LayerEarthquakes, domain.OverlayEarthquakes},
	{LayerTectonicPlates, domain.OverlayTectonicPlates},
}

// layer is the last rendering of one overlay. A failed fetch records its
// error but keeps the previous collection.
type layer struct {
	collection *geojson.FeatureCollection
	encoded    []byte
	fetchedAt  time.Time
	lastErr    error
}

// OverlaySummary describes an overlay in the map document.
type OverlaySummary struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	URL          string    `json:"url" yaml:"url"`
	Visible      bool      `json:"visible" yaml:"visible"`
	Loaded       bool      `json:"loaded" yaml:"loaded"`
	FeatureCount int       `json:"feature_count" yaml:"feature_count"`
	FetchedAt    time.Time `json:"fetched_at,omitzero" yaml:"fetched_at,omitempty"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Document is everything the page needs to assemble the map besides the
// layer data itself.
type Document struct {
	View     domain.MapView        `json:"view" yaml:"view"`
	BaseMaps []domain.BaseMap      `json:"base_maps" yaml:"base_maps"`
	Overlays []OverlaySummary      `json:"overlays" yaml:"overlays"`
	Legend   []domain.LegendEntry  `json:"legend" yaml:"legend"`
	Controls domain.ControlOptions `json:"controls" yaml:"controls"`
}

// State owns the map configuration and both overlay layers. It is created by
// main and shared by the refresher (writer) and the HTTP handlers (readers).
type State struct {
	view     domain.MapView
	baseMaps []domain.BaseMap
	legend   []domain.LegendEntry
	controls domain.ControlOptions
	clock    clockwork.Clock

	mu     sync.RWMutex
	layers map[string]*layer
}

// NewState creates a State with the default catalog and empty layers. Layer
// fetch times are read from clock.
func NewState(clock clockwork.Clock) *State {
	layers := make(map[string]*layer, len(overlayOrder))
	for _, o := range overlayOrder {
		layers[o.id] = &layer{}
	}
	return &State{
		view:     domain.DefaultMapView(),
		baseMaps: domain.DefaultBaseMaps(),
		legend:   domain.DefaultLegend(),
		controls: domain.DefaultControlOptions(),
		clock:    clock,
		layers:   layers,
	}
}

// SetEarthquakes styles and stores the earthquake layer.
func (s *State) SetEarthquakes(features []domain.EarthquakeFeature) error {
	return s.set(LayerEarthquakes, EarthquakeLayer(features))
}

// SetPlates styles and stores the plate boundary layer.
func (s *State) SetPlates(fc *geojson.FeatureCollection) error {
	return s.set(LayerTectonicPlates, PlateLayer(fc))
}

// SetError records a failed fetch for a layer.
func (s *State) SetError(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[id]; ok {
		l.lastErr = err
	}
}

func (s *State) set(id string, fc *geojson.FeatureCollection) error {
	encoded, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode %s layer: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layers[id]
	l.collection = fc
	l.encoded = encoded
	l.fetchedAt = s.clock.Now().UTC()
	l.lastErr = nil
	return nil
}

// LayerJSON returns the encoded GeoJSON for a layer. The error is
// ErrUnknownLayer, or ErrLayerNotLoaded joined with the last fetch error.
func (s *State) LayerJSON(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layers[id]
	if !ok {
		return nil, ErrUnknownLayer
	}
	if l.encoded == nil {
		if l.lastErr != nil {
			return nil, errors.Join(ErrLayerNotLoaded, l.lastErr)
		}
		return nil, ErrLayerNotLoaded
	}
	return l.encoded, nil
}

// Collection returns the stored collection for a layer, or nil.
func (s *State) Collection(id string) *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.layers[id]; ok {
		return l.collection
	}
	return nil
}

// Loaded reports whether any layer has been loaded at least once.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.encoded != nil {
			return true
		}
	}
	return false
}

// Legend returns the depth legend.
func (s *State) Legend() []domain.LegendEntry {
	out := make([]domain.LegendEntry, len(s.legend))
	copy(out, s.legend)
	return out
}

// Document snapshots the map configuration and overlay status.
func (s *State) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlays := make([]OverlaySummary, 0, len(overlayOrder))
	for _, o := range overlayOrder {
		l := s.layers[o.id]
		summary := OverlaySummary{
			ID:        o.id,
			Name:      o.name,
			URL:       "/api/v1/layers/" + o.id,
			Visible:   true,
			Loaded:    l.encoded != nil,
			FetchedAt: l.fetchedAt,
		}
		if l.collection != nil {
			summary.FeatureCount = len(l.collection.Features)
		}
		if l.lastErr != nil {
			summary.Error = l.lastErr.Error()
		}
		overlays = append(overlays, summary)
	}

	baseMaps := make([]domain.BaseMap, len(s.baseMaps))
	copy(baseMaps, s.baseMaps)

	return Document{
		View:     s.view,
		BaseMaps: baseMaps,
		Overlays: overlays,
		Legend:   s.Legend(),
		Controls: s.controls,
	}
}
