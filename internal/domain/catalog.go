package domain

// Overlay names as shown in the layer control.
const (
	OverlayEarthquakes    = "Earthquakes"
	OverlayTectonicPlates = "Tectonic Plates"
)

// MapView is the initial center and zoom of the map.
type MapView struct {
	Center [2]float64 `json:"center" yaml:"center"` // [lat, lon]
	Zoom   int        `json:"zoom" yaml:"zoom"`
}

// BaseMap is a selectable background tile layer.
type BaseMap struct {
	Name        string `json:"name" yaml:"name"`
	URLTemplate string `json:"url" yaml:"url"`
	Attribution string `json:"attribution" yaml:"attribution"`
	Default     bool   `json:"default" yaml:"default"`
}

// ControlOptions configures the on-screen widgets.
type ControlOptions struct {
	LayersCollapsed bool   `json:"layers_collapsed" yaml:"layers_collapsed"`
	LegendPosition  string `json:"legend_position" yaml:"legend_position"`
}

// DefaultMapView centers on the whole world.
func DefaultMapView() MapView {
	return MapView{Center: [2]float64{20, 0}, Zoom: 2}
}

// DefaultBaseMaps returns the background tile layers, default first.
func DefaultBaseMaps() []BaseMap {
	return []BaseMap{
		{
			Name:        "Base Map",
			URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			Default:     true,
		},
		{
			Name:        "Street Map",
			URLTemplate: "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors, Humanitarian OpenStreetMap Team",
		},
	}
}

// DefaultControlOptions keeps the layer control expanded and the legend in
// the bottom-right corner.
func DefaultControlOptions() ControlOptions {
	return ControlOptions{LayersCollapsed: false, LegendPosition: "bottomright"}
}
