package feed

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEarthquakes(t *testing.T) {
	t.Run("skips features that cannot be placed", func(t *testing.T) {
		body := `{"type":"FeatureCollection","features":[
			{"id":"a","properties":{"mag":1},"geometry":null},
			{"id":"b","properties":{"mag":1},"geometry":{"type":"Polygon","coordinates":[]}},
			{"id":"c","properties":{"mag":1},"geometry":{"type":"Point","coordinates":[10]}},
			{"id":"d","properties":{"mag":1},"geometry":{"type":"Point","coordinates":[10,20,5]}}
		]}`

		features, err := DecodeEarthquakes(strings.NewReader(body))
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, "d", features[0].ID)
	})

	t.Run("missing depth decodes to NaN", func(t *testing.T) {
		body := `{"type":"FeatureCollection","features":[
			{"id":"x","properties":{"mag":2},"geometry":{"type":"Point","coordinates":[10,20]}}
		]}`

		features, err := DecodeEarthquakes(strings.NewReader(body))
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.True(t, math.IsNaN(features[0].DepthKm))
	})

	t.Run("empty collection", func(t *testing.T) {
		features, err := DecodeEarthquakes(strings.NewReader(`{"type":"FeatureCollection","features":[]}`))
		require.NoError(t, err)
		assert.Empty(t, features)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := DecodeEarthquakes(strings.NewReader(`{"type":"Feature"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected type")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := DecodeEarthquakes(strings.NewReader(`{invalid`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse earthquake collection")
	})
}

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *float64
		nan      bool
	}{
		{name: "absent", raw: ""},
		{name: "null", raw: "null"},
		{name: "number", raw: "4.5", expected: floatPtr(4.5)},
		{name: "zero", raw: "0", expected: floatPtr(0)},
		{name: "negative", raw: "-0.3", expected: floatPtr(-0.3)},
		{name: "numeric string", raw: `"3.2"`, expected: floatPtr(3.2)},
		{name: "empty string", raw: `""`},
		{name: "non-numeric string", raw: `"big"`, nan: true},
		{name: "boolean", raw: "true", nan: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMagnitude(json.RawMessage(tt.raw))
			switch {
			case tt.nan:
				require.NotNil(t, got)
				assert.True(t, math.IsNaN(*got))
			case tt.expected == nil:
				assert.Nil(t, got)
			default:
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestDecodePlateBoundaries_InvalidJSON(t *testing.T) {
	_, err := DecodePlateBoundaries(strings.NewReader(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse plate collection")
}

func floatPtr(v float64) *float64 { return &v }
