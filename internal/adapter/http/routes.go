package http

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
)

const contentTypeGeoJSON = "application/geo+json"

type MapOutput struct {
	Body mapview.Document
}

type LegendOutput struct {
	Body []domain.LegendEntry
}

type LayerInput struct {
	Name string `path:"name" doc:"Layer ID" example:"earthquakes"`
}

type LayerOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func registerRoutes(api huma.API, store MapStore, logger *slog.Logger) {
	huma.Get(api, "/api/v1/map", func(_ context.Context, _ *struct{}) (*MapOutput, error) {
		return &MapOutput{Body: store.Document()}, nil
	}, huma.OperationTags("map"))

	huma.Get(api, "/api/v1/legend", func(_ context.Context, _ *struct{}) (*LegendOutput, error) {
		return &LegendOutput{Body: store.Document().Legend}, nil
	}, huma.OperationTags("map"))

	huma.Get(api, "/api/v1/layers/{name}", func(_ context.Context, input *LayerInput) (*LayerOutput, error) {
		data, err := store.LayerJSON(input.Name)
		switch {
		case errors.Is(err, mapview.ErrUnknownLayer):
			return nil, huma.Error404NotFound("layer not found: " + input.Name)
		case errors.Is(err, mapview.ErrLayerNotLoaded):
			logger.Warn("layer requested before load", "layer", input.Name, "error", err)
			return nil, huma.Error503ServiceUnavailable(err.Error())
		case err != nil:
			return nil, huma.Error500InternalServerError("read layer", err)
		}
		return &LayerOutput{ContentType: contentTypeGeoJSON, Body: data}, nil
	}, huma.OperationTags("layers"))
}
