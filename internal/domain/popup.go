package domain

import (
	"fmt"
	"html"
	"strconv"
	"time"
)

// PopupContent renders the HTML shown when a marker is clicked. All feed
// text is escaped.
func PopupContent(f EarthquakeFeature) string {
	mag := "unknown"
	if f.Magnitude != nil {
		mag = strconv.FormatFloat(*f.Magnitude, 'f', -1, 64)
	}
	return fmt.Sprintf(
		"<h3>%s</h3><hr><p>Magnitude: %s</p><p>Depth: %s km</p><p>Date: %s</p>",
		html.EscapeString(f.Place),
		html.EscapeString(mag),
		strconv.FormatFloat(f.DepthKm, 'f', -1, 64),
		f.Time().Format(time.RFC1123),
	)
}
