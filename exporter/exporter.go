// Package exporter writes pipeline tables to an output location.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/m-lab/tb-stats-pipeline/formatter"
	"github.com/m-lab/tb-stats-pipeline/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportedBytesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tb_pipeline_exported_bytes_total",
		Help: "Bytes written by the exporter",
	}, []string{
		"file",
	})
)

// ErrIO is returned when an output cannot be written.
var ErrIO = errors.New("write error")

// Writer defines the interface for saving files to GCS or locally.
type Writer interface {
	Write(ctx context.Context, path string, content []byte) error
}

// Exporter serializes tables with a Formatter and saves them with a Writer.
type Exporter struct {
	formatter formatter.Formatter
	output    Writer
	prefix    string
}

// New creates a new Exporter. Every output path is relative to prefix.
func New(f formatter.Formatter, output Writer, prefix string) *Exporter {
	return &Exporter{
		formatter: f,
		output:    output,
		prefix:    prefix,
	}
}

// Path returns the output path used for the named table.
func (e *Exporter) Path(name string) string {
	return path.Join(e.prefix, name+"."+e.formatter.Extension())
}

// Export writes t to <prefix>/<name>.<ext>, replacing any previous content,
// and returns the path written. Write failures wrap ErrIO.
func (e *Exporter) Export(ctx context.Context, name string, t *table.Table) (string, error) {
	p := e.Path(name)
	log.Printf("Exporting %s (%d rows)...", p, t.Len())
	content, err := e.formatter.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("cannot marshal %s: %w", p, err)
	}
	err = e.output.Write(ctx, p, content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrIO, p, err)
	}
	exportedBytesMetric.WithLabelValues(name).Add(float64(len(content)))
	return p, nil
}
