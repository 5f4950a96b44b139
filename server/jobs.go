package server

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vegepoly/vegepoly/exporter"
	"github.com/vegepoly/vegepoly/polyparse"
	"github.com/vegepoly/vegepoly/veggen"
	"github.com/vegepoly/vegepoly/vegmodel"
)

// job is one background generation run. The tracker carries live progress;
// the terminal fields are filled exactly once when the run ends.
type job struct {
	id      string
	tracker *veggen.Tracker

	mu         sync.Mutex
	outputFile string
	failure    string
	done       bool
}

func (j *job) finish(outputFile string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	j.outputFile = outputFile
	if err != nil {
		j.failure = err.Error()
	}
}

type jobStatus struct {
	ID         string          `json:"id"`
	Progress   veggen.Snapshot `json:"progress"`
	OutputFile string          `json:"output_file,omitempty"`
	Failure    string          `json:"failure,omitempty"`
	Done       bool            `json:"done"`
}

func (j *job) status() jobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jobStatus{
		ID:         j.id,
		Progress:   j.tracker.Snapshot(),
		OutputFile: j.outputFile,
		Failure:    j.failure,
		Done:       j.done,
	}
}

// startJob launches a batch run on a background worker so HTTP handlers
// stay responsive, and returns the job for immediate polling.
func (s *server) startJob(csvPath string, params vegmodel.Params, output string) (*job, error) {
	rows, err := polyparse.ReadRows(csvPath)
	if err != nil {
		return nil, err
	}

	tracker := veggen.NewTracker()
	gen, err := veggen.New(params, veggen.WithTracker(tracker))
	if err != nil {
		return nil, err
	}

	if output == "" {
		dir, err := s.store.ExportPath()
		if err != nil {
			return nil, err
		}
		output = filepath.Join(dir, exporter.DefaultFilename(time.Now()))
	}

	j := &job{id: uuid.NewString(), tracker: tracker}
	s.jobs.Store(j.id, j)
	s.metricJobsStarted.Add(context.Background(), 1)

	s.wg.Go(func() {
		results, err := gen.Run(context.Background(), rows)
		if err != nil {
			j.finish("", err)
			s.log.Error("Generation job failed", "job", j.id, "error", err.Error())
			return
		}

		points := veggen.AllPoints(results)
		s.metricPointsGenerated.Add(context.Background(), int64(len(points)))

		if err := exporter.Save(output, points); err != nil {
			j.finish("", err)
			s.log.Error("Export failed", "job", j.id, "error", err.Error())
			return
		}

		j.finish(output, nil)
		s.log.Info("Generation job complete", "job", j.id, "points", len(points), "output", output)
	})

	return j, nil
}

func (s *server) wait() {
	s.wg.Wait()
}
