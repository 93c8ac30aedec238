// Package domain models USGS earthquake reports and the visual encodings used
// to draw them on a map.
//
// # Data Source
//
// Earthquakes come from the USGS real-time GeoJSON summary feed
// (https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/). Each feature is
// a Point whose coordinates are [longitude, latitude, depth]:
//
//	{"type":"Feature","id":"us7000abcd",
//	 "properties":{"mag":4.6,"place":"10 km SSW of Hualien City, Taiwan","time":1714150200000,...},
//	 "geometry":{"type":"Point","coordinates":[121.56,23.87,12.3]}}
//
// Plate boundaries come from the PB2002 model (Bird, 2003) as LineString
// features; they are drawn with a single fixed style.
//
// # Feed Conventions
//
// Magnitude:
//
//	"mag" may be null for events that have not been reviewed yet. Null and 0
//	both render at the minimum marker radius. Non-numeric values decode to NaN
//	and propagate through the radius arithmetic unchanged.
//
// Depth:
//
//	Kilometers below the surface, taken from the third coordinate. Negative
//	depths are valid (epicenters above sea level, e.g. volcanic regions).
//
// Time:
//
//	Milliseconds since the Unix epoch, UTC.
//
// # Encodings
//
// Depth is mapped to one of six colors by a threshold ladder evaluated from the
// deepest bound down; the first bound strictly exceeded wins:
//
//	> 90 km #FF0000 | > 70 km #FF4500 | > 50 km #FF8C00
//	> 30 km #FFD700 | > 10 km #ADFF2F | otherwise #00FF00
//
// Magnitude is mapped to a marker radius of magnitude × 4, with a radius of 1
// when the magnitude is missing or zero. Negative magnitudes are not clamped;
// the sign carries through from the source data.
//
// The legend is derived from the same rule table (see [BuildLegend]) so the
// two can never drift apart.
package domain
