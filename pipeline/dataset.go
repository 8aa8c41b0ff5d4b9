package pipeline

import (
	"context"

	"github.com/m-lab/tb-stats-pipeline/acquire"
	"github.com/m-lab/tb-stats-pipeline/config"
	"github.com/m-lab/tb-stats-pipeline/exporter"
	"github.com/m-lab/tb-stats-pipeline/formatter"
)

// RunDataset processes one configured dataset and writes its outputs to w.
// When input is empty the file is acquired first: it is looked up in the
// configured download directory and downloaded with d if it is not there.
func RunDataset(ctx context.Context, c config.Config, d acquire.Downloader,
	w exporter.Writer, input string) (*Result, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return &Result{}, err
	}
	f, err := formatter.New(c.Format, c.Comma())
	if err != nil {
		return &Result{}, err
	}
	if input == "" {
		input, err = acquire.Acquire(ctx, d, c.SourceURL, c.DownloadDir, c.InputExt)
		if err != nil {
			return &Result{}, err
		}
	}
	proc := NewProcessor(exporter.New(f, w, c.OutputPath), c)
	return proc.Run(ctx, input)
}
