package mapview

import (
	"math"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EarthquakeLayer builds one styled Point feature per earthquake. Properties
// carry the raw attributes plus "style" and "popup" for the page script.
func EarthquakeLayer(features []domain.EarthquakeFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(orb.Point{f.Lon, f.Lat})
		if f.ID != "" {
			gf.ID = f.ID
		}
		gf.Properties["place"] = f.Place
		gf.Properties["time"] = f.TimestampMs
		gf.Properties["depth"] = jsonNumber(f.DepthKm)
		gf.Properties["mag"] = nil
		if f.Magnitude != nil {
			gf.Properties["mag"] = jsonNumber(*f.Magnitude)
		}
		if f.URL != "" {
			gf.Properties["url"] = f.URL
		}
		gf.Properties["style"] = domain.StyleFor(f)
		gf.Properties["popup"] = domain.PopupContent(f)
		fc.Append(gf)
	}
	return fc
}

// PlateLayer copies the boundary features and attaches the fixed line style.
// The source collection is left untouched.
func PlateLayer(src *geojson.FeatureCollection) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if src == nil {
		return fc
	}
	style := domain.PlateBoundaryStyle()
	for _, f := range src.Features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		gf.Properties = f.Properties.Clone()
		if gf.Properties == nil {
			gf.Properties = geojson.Properties{}
		}
		gf.Properties["style"] = style
		fc.Append(gf)
	}
	return fc
}

// jsonNumber maps values JSON cannot represent to null.
func jsonNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
