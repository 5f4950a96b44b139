// Package veggen drives vegetation generation over a batch of CSV rows:
// one Poisson-disc sampling pass per polygon, per-row error accounting, and
// progress reporting for both terminal and UI consumers.
package veggen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/cheggaaa/pb/v3/termutil"
	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"

	"github.com/vegepoly/vegepoly/poisson"
	"github.com/vegepoly/vegepoly/polyparse"
	"github.com/vegepoly/vegepoly/vegmodel"
)

// ErrEmptyInput is returned for a batch with zero data rows.
var ErrEmptyInput = errors.New("input contains no data rows")

// RowResult is the outcome for a single input row. Err is nil on success;
// a failed row carries zero points and exactly one error message in the
// progress tracker.
type RowResult struct {
	// Row is the 0-based index within the batch, Line the 1-based line
	// number in the source file.
	Row  int
	Line int
	// Points carries the exported (jittered) coordinates.
	Points   []vegmodel.PointRecord
	Duration time.Duration
	Err      error
}

// Generator runs batches. It is single-threaded by design: polygons are
// processed in order and no sampling state survives a polygon boundary.
type Generator struct {
	params vegmodel.Params
	cfg    poisson.Config

	rng         *rand.Rand
	log         *slog.Logger
	tracker     *Tracker
	progressBar bool
}

func New(params vegmodel.Params, opts ...Option) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	o := options{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     slog.Default(),
		tracker: NewTracker(),
	}
	for _, opt := range opts {
		opt.apply(&o)
	}

	return &Generator{
		params:      params,
		cfg:         poisson.Config{MinDistance: params.Density},
		rng:         o.rng,
		log:         o.log,
		tracker:     o.tracker,
		progressBar: o.progressBar,
	}, nil
}

// Tracker exposes the progress tracker of this generator.
func (g *Generator) Tracker() *Tracker {
	return g.tracker
}

// Run processes every row and returns the ordered per-row results. Row
// failures never abort the batch; the only returned errors are an empty
// batch, an invalid configuration and context cancellation. The context is
// checked at row boundaries only, so a row's result is always complete or
// absent, never partial.
func (g *Generator) Run(ctx context.Context, rows []polyparse.Row) ([]RowResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	g.tracker.Start(len(rows))

	var bar *pb.ProgressBar
	if g.progressBar {
		bar = startBar(int64(len(rows)), "generating "+vegmodel.TypeName(g.params.VegetationType))
	}

	results := make([]RowResult, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			if bar != nil {
				bar.Finish()
			}
			g.tracker.Finish()
			return results, err
		}

		res := g.processRow(i, row)
		results = append(results, res)

		g.tracker.RowDone()
		if bar != nil {
			bar.SetCurrent(int64(i + 1))
		}
	}

	if bar != nil {
		bar.Finish()
	}
	g.tracker.Finish()

	snap := g.tracker.Snapshot()
	g.log.Info("Generation complete",
		"rows", snap.TotalRows,
		"points", humanize.Comma(int64(snap.CreatedItems)),
		"errors", len(snap.Errors))

	return results, nil
}

func (g *Generator) processRow(i int, row polyparse.Row) RowResult {
	start := time.Now()
	res := RowResult{Row: i, Line: row.Line}

	poly, err := row.Polygon()
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		g.recordError(i, row, err)
		return res
	}

	points, err := poisson.Sample(poly, g.cfg, g.rng)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		g.recordError(i, row, err)
		return res
	}

	exported := poisson.Jitter(points, g.params.Variation, g.rng)
	res.Points = make([]vegmodel.PointRecord, len(exported))
	for j, p := range exported {
		res.Points[j] = vegmodel.RecordFromPoint(p, g.params.TypeValue)
	}
	res.Duration = time.Since(start)

	g.tracker.AddItems(len(res.Points))
	g.log.Info(fmt.Sprintf("Row [%d/%d] %d points of %s generated",
		i+1, g.tracker.Snapshot().TotalRows, len(res.Points), vegmodel.TypeName(g.params.VegetationType)))

	return res
}

func (g *Generator) recordError(i int, row polyparse.Row, err error) {
	var msg string
	if errors.Is(err, polyparse.ErrNoPolygonData) {
		msg = fmt.Sprintf("No polygon data in line %d", row.Line)
	} else {
		msg = fmt.Sprintf("Error at row %d: %s", i, err.Error())
	}
	g.tracker.AddError(msg)
	g.log.Warn(msg)
}

// AllPoints flattens the per-row results into one export-ordered slice.
func AllPoints(results []RowResult) []vegmodel.PointRecord {
	var out []vegmodel.PointRecord
	for _, res := range results {
		out = append(out, res.Points...)
	}
	return out
}

// Preview runs a single polygon outside of any batch, returning the
// exterior ring and the generated points. The UI uses it to render a
// polygon with a sample distribution before committing to a full file.
func (g *Generator) Preview(poly orb.Polygon) (ring []orb.Point, points []vegmodel.PointRecord, err error) {
	if err := polyparse.Validate(poly); err != nil {
		return nil, nil, err
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sampled, err := poisson.Sample(poly, g.cfg, g.rng)
	if err != nil {
		return nil, nil, err
	}
	exported := poisson.Jitter(sampled, g.params.Variation, g.rng)

	points = make([]vegmodel.PointRecord, len(exported))
	for i, p := range exported {
		points[i] = vegmodel.RecordFromPoint(p, g.params.TypeValue)
	}
	return poly[0], points, nil
}

func startBar(total int64, name string) *pb.ProgressBar {
	bar := pb.Start64(total)
	bar.Set("prefix", name)
	bar.SetRefreshRate(time.Second)
	if w, err := termutil.TerminalWidth(); w == 0 || err != nil {
		bar.SetTemplateString(`{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{percent . }} {{rtime . "ETA %s"}}` + "\n")
	}
	return bar
}
