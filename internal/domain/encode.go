package domain

import "strconv"

const (
	// MinRadius is the marker radius used when magnitude is missing or zero.
	MinRadius = 1.0
	// RadiusScale converts magnitude to marker radius in pixels.
	RadiusScale = 4.0

	strokeColor  = "#000"
	strokeWeight = 0.5
	opacity      = 1.0
	fillOpacity  = 0.8
)

// defaultDepthColorRules is ordered by ascending lower bound. The first rule
// doubles as the catch-all for anything not above a higher bound.
var defaultDepthColorRules = []DepthColorRule{
	{LowerBoundKm: -10, Color: "#00FF00"},
	{LowerBoundKm: 10, Color: "#ADFF2F"},
	{LowerBoundKm: 30, Color: "#FFD700"},
	{LowerBoundKm: 50, Color: "#FF8C00"},
	{LowerBoundKm: 70, Color: "#FF4500"},
	{LowerBoundKm: 90, Color: "#FF0000"},
}

// plateBoundaryStyle is the line style for tectonic plate boundaries.
var plateBoundaryStyle = LineStyle{Color: "orange", Weight: 2}

// DefaultDepthColorRules returns a copy of the six-bucket depth table.
func DefaultDepthColorRules() []DepthColorRule {
	rules := make([]DepthColorRule, len(defaultDepthColorRules))
	copy(rules, defaultDepthColorRules)
	return rules
}

// PlateBoundaryStyle returns the fixed style for plate boundary lines.
func PlateBoundaryStyle() LineStyle {
	return plateBoundaryStyle
}

// ColorForDepth maps a depth in kilometers to a marker fill color using the
// default rule table.
func ColorForDepth(depthKm float64) string {
	return ColorForDepthWith(defaultDepthColorRules, depthKm)
}

// ColorForDepthWith walks rules from the highest bound down and returns the
// color of the first bound strictly exceeded. The lowest rule is returned when
// none match, which covers NaN and depths at or below every bound. Rules must
// be ordered by ascending LowerBoundKm. Returns "" for an empty table.
func ColorForDepthWith(rules []DepthColorRule, depthKm float64) string {
	if len(rules) == 0 {
		return ""
	}
	for i := len(rules) - 1; i > 0; i-- {
		if depthKm > rules[i].LowerBoundKm {
			return rules[i].Color
		}
	}
	return rules[0].Color
}

// RadiusForMagnitude maps magnitude to a marker radius. A nil or zero
// magnitude yields MinRadius. Negative and NaN magnitudes pass through the
// multiplication unchanged.
func RadiusForMagnitude(magnitude *float64) float64 {
	if magnitude == nil || *magnitude == 0 {
		return MinRadius
	}
	return *magnitude * RadiusScale
}

// StyleFor composes the depth and magnitude encoders into a marker style.
func StyleFor(f EarthquakeFeature) StyleDescriptor {
	return StyleDescriptor{
		Radius:       RadiusForMagnitude(f.Magnitude),
		FillColor:    ColorForDepth(f.DepthKm),
		StrokeColor:  strokeColor,
		StrokeWeight: strokeWeight,
		Opacity:      opacity,
		FillOpacity:  fillOpacity,
	}
}

// BuildLegend produces one entry per rule in input order. Each entry spans
// from its bound to the next one ("10–30 km"); the last is open-ended
// ("90+ km").
func BuildLegend(rules []DepthColorRule) []LegendEntry {
	entries := make([]LegendEntry, 0, len(rules))
	for i, r := range rules {
		lower := formatKm(r.LowerBoundKm)
		label := lower + "+ km"
		if i+1 < len(rules) {
			label = lower + "–" + formatKm(rules[i+1].LowerBoundKm) + " km"
		}
		entries = append(entries, LegendEntry{RangeLabel: label, Color: r.Color})
	}
	return entries
}

// DefaultLegend is the legend for the default depth table.
func DefaultLegend() []LegendEntry {
	return BuildLegend(defaultDepthColorRules)
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
