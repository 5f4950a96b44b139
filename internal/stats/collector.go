// Package stats samples process memory and CPU while a batch runs, for
// sizing generation jobs on large exports.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Report is the JSON document written after a run.
type Report struct {
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	TotalElapsed time.Duration `json:"total_elapsed_ns"`
	ElapsedHuman string        `json:"total_elapsed"`
	Samples      []Sample      `json:"samples"`
	Summary      Summary       `json:"summary"`
}

// Sample is one point-in-time measurement.
type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	HeapAlloc      uint64    `json:"heap_alloc"`
	Sys            uint64    `json:"sys"`
	NumGC          uint32    `json:"num_gc"`
	ProcessRSS     uint64    `json:"process_rss_bytes"`
	CPUPercent     float64   `json:"cpu_percent"`
	NumGoroutine   int       `json:"num_goroutine"`
}

type Summary struct {
	PeakHeapAlloc  uint64  `json:"peak_heap_alloc"`
	PeakProcessRSS uint64  `json:"peak_process_rss"`
	PeakCPUPercent float64 `json:"peak_cpu_percent"`
	TotalGCCycles  uint32  `json:"total_gc_cycles"`
	SampleCount    int     `json:"sample_count"`
}

// Collector periodically samples runtime stats until stopped.
type Collector struct {
	mu        sync.Mutex
	report    Report
	startTime time.Time
	stopChan  chan struct{}
	doneChan  chan struct{}
	interval  time.Duration
	proc      *process.Process
}

func NewCollector(interval time.Duration) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process info: %w", err)
	}

	return &Collector{
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		proc:     proc,
	}, nil
}

func (c *Collector) Start() {
	c.startTime = time.Now()
	c.report.StartTime = c.startTime

	go c.collect()
}

// Stop takes a final sample and closes the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.doneChan

	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.EndTime = time.Now()
	c.report.TotalElapsed = c.report.EndTime.Sub(c.startTime)
	c.report.ElapsedHuman = c.report.TotalElapsed.String()
	c.summarizeLocked()
}

func (c *Collector) collect() {
	defer close(c.doneChan)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample()
	for {
		select {
		case <-c.stopChan:
			c.sample()
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Collector) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	point := Sample{
		Timestamp:      time.Now(),
		ElapsedSeconds: time.Since(c.startTime).Seconds(),
		HeapAlloc:      memStats.HeapAlloc,
		Sys:            memStats.Sys,
		NumGC:          memStats.NumGC,
		NumGoroutine:   runtime.NumGoroutine(),
	}

	if memInfo, err := c.proc.MemoryInfo(); err == nil && memInfo != nil {
		point.ProcessRSS = memInfo.RSS
	}
	if cpuPercent, err := c.proc.CPUPercent(); err == nil {
		point.CPUPercent = cpuPercent
	}

	c.mu.Lock()
	c.report.Samples = append(c.report.Samples, point)
	c.mu.Unlock()
}

func (c *Collector) summarizeLocked() {
	s := Summary{SampleCount: len(c.report.Samples)}
	for _, p := range c.report.Samples {
		if p.HeapAlloc > s.PeakHeapAlloc {
			s.PeakHeapAlloc = p.HeapAlloc
		}
		if p.ProcessRSS > s.PeakProcessRSS {
			s.PeakProcessRSS = p.ProcessRSS
		}
		if p.CPUPercent > s.PeakCPUPercent {
			s.PeakCPUPercent = p.CPUPercent
		}
		s.TotalGCCycles = p.NumGC
	}
	c.report.Summary = s
}

// WriteReport writes the collected report as indented JSON.
func (c *Collector) WriteReport(path string) error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.report, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
