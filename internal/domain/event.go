package domain

import (
	"encoding/json"
	"math"
	"time"
)

// EarthquakeFeature is a single event from the USGS feed, decoded verbatim.
type EarthquakeFeature struct {
	ID          string   `json:"id"`
	Magnitude   *float64 `json:"mag"` // nil when the feed reports null
	DepthKm     float64  `json:"depth_km"`
	Lon         float64  `json:"lon"`
	Lat         float64  `json:"lat"`
	Place       string   `json:"place"`
	TimestampMs int64    `json:"time"`
	URL         string   `json:"url,omitempty"`
}

// Time returns the event origin time in UTC.
func (f EarthquakeFeature) Time() time.Time {
	return time.UnixMilli(f.TimestampMs).UTC()
}

// StyleDescriptor holds the marker style for one feature. JSON keys follow
// Leaflet path options so the page script can pass it through untouched.
type StyleDescriptor struct {
	Radius       float64 `json:"radius"`
	FillColor    string  `json:"fillColor"`
	StrokeColor  string  `json:"color"`
	StrokeWeight float64 `json:"weight"`
	Opacity      float64 `json:"opacity"`
	FillOpacity  float64 `json:"fillOpacity"`
}

// MarshalJSON encodes a NaN or infinite radius as null, since JSON has no NaN.
func (s StyleDescriptor) MarshalJSON() ([]byte, error) {
	type alias StyleDescriptor
	return json.Marshal(struct {
		alias
		Radius *float64 `json:"radius"`
	}{alias: alias(s), Radius: finite(s.Radius)})
}

// DepthColorRule assigns Color to depths strictly greater than LowerBoundKm.
type DepthColorRule struct {
	LowerBoundKm float64 `json:"lower_bound_km" yaml:"lower_bound_km"`
	Color        string  `json:"color" yaml:"color"`
}

// LegendEntry is one row of the depth legend.
type LegendEntry struct {
	RangeLabel string `json:"label" yaml:"label"`
	Color      string `json:"color" yaml:"color"`
}

// LineStyle is the fixed style for plate boundary lines.
type LineStyle struct {
	Color  string  `json:"color" yaml:"color"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// StyledEarthquake pairs an event with its computed style, as published
// downstream.
type StyledEarthquake struct {
	EarthquakeFeature
	Style     StyleDescriptor `json:"style"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// MarshalJSON encodes a non-finite magnitude or depth as null, matching the
// map layer.
func (e StyledEarthquake) MarshalJSON() ([]byte, error) {
	type alias StyledEarthquake
	var magnitude *float64
	if e.Magnitude != nil {
		magnitude = finite(*e.Magnitude)
	}
	return json.Marshal(struct {
		alias
		Magnitude *float64 `json:"mag"`
		DepthKm   *float64 `json:"depth_km"`
	}{alias: alias(e), Magnitude: magnitude, DepthKm: finite(e.DepthKm)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
