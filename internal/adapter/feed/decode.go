package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// USGS feed types. orb's geojson decoder keeps only two coordinates per point,
// so the earthquake feed is decoded here to retain depth.

type usgsCollection struct {
	Type     string        `json:"type"`
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   *usgsGeometry  `json:"geometry"`
}

type usgsProperties struct {
	Mag   json.RawMessage `json:"mag"`
	Place string          `json:"place"`
	Time  float64         `json:"time"`
	URL   string          `json:"url"`
}

type usgsGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// DecodeEarthquakes reads a USGS GeoJSON FeatureCollection. Features without
// a Point geometry carrying at least longitude and latitude cannot be placed
// on a map and are skipped.
func DecodeEarthquakes(r io.Reader) ([]domain.EarthquakeFeature, error) {
	var fc usgsCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("parse earthquake collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse earthquake collection: unexpected type %q", fc.Type)
	}

	features := make([]domain.EarthquakeFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		features = append(features, domain.EarthquakeFeature{
			ID:          f.ID,
			Magnitude:   parseMagnitude(f.Properties.Mag),
			DepthKm:     depthOf(f.Geometry.Coordinates),
			Lon:         f.Geometry.Coordinates[0],
			Lat:         f.Geometry.Coordinates[1],
			Place:       f.Properties.Place,
			TimestampMs: int64(f.Properties.Time),
			URL:         f.Properties.URL,
		})
	}
	return features, nil
}

// DecodePlateBoundaries reads the plate boundary FeatureCollection.
func DecodePlateBoundaries(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plate collection: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse plate collection: %w", err)
	}
	return fc, nil
}

// parseMagnitude returns nil for an absent, null, or empty magnitude, the value
// for a number or numeric string, and NaN for anything else.
func parseMagnitude(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if strings.TrimSpace(str) == "" {
			return nil
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return &parsed
		}
	}

	nan := math.NaN()
	return &nan
}

func depthOf(coords []float64) float64 {
	if len(coords) < 3 {
		return math.NaN()
	}
	return coords[2]
}
