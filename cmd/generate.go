package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/vegepoly/vegepoly/exporter"
	"github.com/vegepoly/vegepoly/internal/stats"
	"github.com/vegepoly/vegepoly/polyparse"
	"github.com/vegepoly/vegepoly/server"
	"github.com/vegepoly/vegepoly/settings"
	"github.com/vegepoly/vegepoly/veggen"
	"github.com/vegepoly/vegepoly/vegmodel"
)

// loadParams resolves the effective parameters for the run: stored profile
// for the vegetation type, then command line overrides on top.
func loadParams(ctx *cli.Context, store *settings.Store) (vegmodel.Params, error) {
	params, err := store.EffectiveParams(ctx.Int("vegetation-type"))
	if err != nil {
		return vegmodel.Params{}, err
	}

	if v, ok, err := floatFlag(ctx, "density"); err != nil {
		return vegmodel.Params{}, err
	} else if ok {
		params.Density = v
	}
	if v, ok, err := floatFlag(ctx, "variation"); err != nil {
		return vegmodel.Params{}, err
	} else if ok {
		params.Variation = v
	}
	if ctx.IsSet("type-value") {
		params.TypeValue = ctx.Int("type-value")
	}

	return params, nil
}

func generate(ctx *cli.Context) error {
	store, err := settings.Open(settingsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	params, err := loadParams(ctx, store)
	if err != nil {
		return err
	}

	input := ctx.String("input")
	rows, err := polyparse.ReadRows(input)
	if err != nil {
		return err
	}
	fmt.Printf("Input file: %s (%d rows)\n", input, len(rows))

	opts := []veggen.Option{veggen.WithProgressBar(true)}
	if ctx.IsSet("seed") {
		opts = append(opts, veggen.WithRand(rand.New(rand.NewSource(int64(ctx.Int("seed"))))))
	}

	gen, err := veggen.New(params, opts...)
	if err != nil {
		return err
	}

	output := ctx.String("output")
	if output == "" {
		dir, err := store.ExportPath()
		if err != nil {
			return err
		}
		output = filepath.Join(dir, exporter.DefaultFilename(time.Now()))
	}

	var collector *stats.Collector
	if ctx.Bool("stats") {
		collector, err = stats.NewCollector(time.Second)
		if err != nil {
			return fmt.Errorf("error creating stats collector: %w", err)
		}
		collector.Start()
	}

	results, err := gen.Run(ctx.Context, rows)
	if err != nil {
		return err
	}

	if collector != nil {
		collector.Stop()
		if err := collector.WriteReport(output + ".stats.json"); err != nil {
			return fmt.Errorf("error writing stats report: %w", err)
		}
	}

	points := veggen.AllPoints(results)
	if err := exporter.Save(output, points); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	snap := gen.Tracker().Snapshot()
	fmt.Printf("Processed %d polygons, generated %d points\n", snap.CurrentRow, snap.CreatedItems)
	for _, msg := range snap.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", msg)
	}
	fmt.Printf("Saved to file: %s\n", output)
	fmt.Printf("Complete\n")

	return nil
}

func preview(ctx *cli.Context) error {
	store, err := settings.Open(settingsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	params, err := loadParams(ctx, store)
	if err != nil {
		return err
	}

	rows, err := polyparse.ReadRows(ctx.String("input"))
	if err != nil {
		return err
	}

	gen, err := veggen.New(params)
	if err != nil {
		return err
	}

	for _, row := range rows {
		poly, err := row.Polygon()
		if err != nil {
			continue
		}

		ring, points, err := gen.Preview(poly)
		if err != nil {
			return fmt.Errorf("sampling line %d: %w", row.Line, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"line":    row.Line,
			"polygon": ring,
			"points":  points,
		})
	}

	return fmt.Errorf("%s: %w", ctx.String("input"), polyparse.ErrNoPolygonData)
}

func defaults(ctx *cli.Context) error {
	store, err := settings.Open(settingsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	params, err := store.EffectiveParams(ctx.Int("vegetation-type"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(params)
}

func serve(ctx *cli.Context) error {
	store, err := settings.Open(settingsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	return server.Run(ctx.Context, ctx.String("listen"), store)
}
