// Command snapshot renders the earthquake map document offline from a feed
// file or URL and prints it as JSON or YAML.
//
// Usage:
//
//	go run ./cmd/snapshot render \
//	  --earthquakes testdata/all_week.geojson \
//	  --plates https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json \
//	  --yaml
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "snapshot",
		Short:        "Render the earthquake map offline",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd())
	return root
}
