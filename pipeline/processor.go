// Package pipeline runs the dataset processing stages and exports their
// results.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/m-lab/tb-stats-pipeline/config"
	"github.com/m-lab/tb-stats-pipeline/table"
	"github.com/m-lab/tb-stats-pipeline/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageRowsMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tb_pipeline_stage_rows",
		Help: "Rows produced by the last run of each pipeline stage",
	}, []string{
		"stage",
	})
	runsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tb_pipeline_runs_total",
		Help: "Pipeline runs by final status",
	}, []string{
		"status",
	})
)

// previewRows is the number of rows logged after each stage.
const previewRows = 5

// Names of the exported tables, without extension.
const (
	ProcessedName  = "processed_data"
	AggregatedName = "aggregated_data"
	FilteredName   = "filtered_data"
)

// Pipeline stages, as reported in errors and completed steps.
const (
	StageLoad        = "load"
	StageDropMissing = "drop-missing"
	StageLowercase   = "lowercase"
	StageAggregate   = "aggregate"
	StageFilter      = "filter"
	StageExport      = "export"
)

// StageError reports the stage a run failed at.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Exporter saves a named table and returns the path written.
type Exporter interface {
	Export(ctx context.Context, name string, t *table.Table) (string, error)
}

// Result holds the tables computed by a run. Tables of stages that did not
// run are nil.
type Result struct {
	Loaded     *table.Table
	Processed  *table.Table
	Normalized *table.Table
	Aggregated *table.Table
	Filtered   *table.Table

	// CompletedSteps lists the stages and exports that succeeded, in order.
	CompletedSteps []string
	// Outputs lists the paths written.
	Outputs []string
}

func (r *Result) complete(stage string, t *table.Table) {
	log.Printf("Stage %s done: %d rows\n%s", stage, t.Len(), preview(t, previewRows))
	stageRowsMetric.WithLabelValues(stage).Set(float64(t.Len()))
	r.CompletedSteps = append(r.CompletedSteps, stage)
}

// preview renders the header and the first n rows of t, one comma separated
// line each.
func preview(t *table.Table, n int) string {
	lines := []string{}
	for _, rec := range t.Head(n).Records() {
		lines = append(lines, strings.Join(rec, ","))
	}
	return strings.Join(lines, "\n")
}

// Processor runs the processing stages on one input file:
//
//	load -> drop-missing -> export processed_data
//	     -> lowercase -> aggregate -> export aggregated_data
//	                  -> filter    -> export filtered_data
//
// Drop-missing reads the loaded table; aggregate and filter read the
// lowercased one.
type Processor struct {
	exporter Exporter
	config   config.Config
}

// NewProcessor creates a Processor. Empty fields of c take their default.
func NewProcessor(exporter Exporter, c config.Config) *Processor {
	return &Processor{
		exporter: exporter,
		config:   c.WithDefaults(),
	}
}

type namedTable struct {
	name  string
	table *table.Table
}

// Run processes the file at input. The first failing stage aborts the run
// with a *StageError; outputs exported before the failure are kept. When
// the config is Staged, nothing is exported unless every stage succeeds.
// The returned Result is never nil.
func (p *Processor) Run(ctx context.Context, input string) (*Result, error) {
	res := &Result{}
	err := p.run(ctx, input, res)
	if err != nil {
		log.Printf("Processing %s failed: %v", input, err)
		runsMetric.WithLabelValues("failure").Inc()
		return res, err
	}
	runsMetric.WithLabelValues("success").Inc()
	return res, nil
}

func (p *Processor) run(ctx context.Context, input string, res *Result) error {
	var pending []namedTable
	export := func(name string, t *table.Table) error {
		if p.config.Staged {
			pending = append(pending, namedTable{name, t})
			return nil
		}
		return p.export(ctx, name, t, res)
	}

	loaded, err := table.Load(input, table.WithDelimiter(p.config.Comma()))
	if err != nil {
		return &StageError{Stage: StageLoad, Err: err}
	}
	res.Loaded = loaded
	res.complete(StageLoad, loaded)

	res.Processed = transform.DropMissing(loaded)
	res.complete(StageDropMissing, res.Processed)
	if err := export(ProcessedName, res.Processed); err != nil {
		return err
	}

	res.Normalized = transform.Lowercase(loaded)
	res.complete(StageLowercase, res.Normalized)

	res.Aggregated, err = transform.MeanBy(res.Normalized, p.config.GroupColumn)
	if err != nil {
		return &StageError{Stage: StageAggregate, Err: err}
	}
	res.complete(StageAggregate, res.Aggregated)
	if err := export(AggregatedName, res.Aggregated); err != nil {
		return err
	}

	res.Filtered, err = transform.FilterGreater(res.Normalized,
		p.config.ThresholdColumn, p.config.Threshold)
	if err != nil {
		return &StageError{Stage: StageFilter, Err: err}
	}
	res.complete(StageFilter, res.Filtered)
	if err := export(FilteredName, res.Filtered); err != nil {
		return err
	}

	for _, nt := range pending {
		if err := p.export(ctx, nt.name, nt.table, res); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) export(ctx context.Context, name string, t *table.Table, res *Result) error {
	path, err := p.exporter.Export(ctx, name, t)
	if err != nil {
		return &StageError{Stage: StageExport, Err: err}
	}
	res.CompletedSteps = append(res.CompletedSteps, StageExport+":"+name)
	res.Outputs = append(res.Outputs, path)
	return nil
}
