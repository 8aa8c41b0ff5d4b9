// tb-process downloads the WHO tuberculosis dataset, if needed, and writes
// its processed, aggregated and filtered versions to an output directory.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/tb-stats-pipeline/acquire"
	"github.com/m-lab/tb-stats-pipeline/config"
	"github.com/m-lab/tb-stats-pipeline/output"
	"github.com/m-lab/tb-stats-pipeline/pipeline"
)

const defaultSourceURL = "https://www.who.int/teams/global-tuberculosis-programme/data"

var (
	input           string
	outputDir       string
	downloadTimeout time.Duration
	headless        bool

	conf    = config.Default()
	mainCtx = context.Background()
)

func init() {
	flag.StringVar(&input, "input", "",
		"Dataset file to process. If empty, the dataset is looked up in "+
			"-download.dir and downloaded from -source.url when missing")
	flag.StringVar(&outputDir, "output.dir", ".", "Directory to write the results to")
	flag.StringVar(&conf.GroupColumn, "group.column", conf.GroupColumn,
		"Column to compute per-group means on")
	flag.StringVar(&conf.ThresholdColumn, "threshold.column", conf.ThresholdColumn,
		"Numeric column compared against -threshold")
	flag.Float64Var(&conf.Threshold, "threshold", conf.Threshold,
		"Rows whose -threshold.column value is greater are kept by the filter")
	flag.StringVar(&conf.Format, "format", conf.Format, "Output format: csv or json")
	flag.StringVar(&conf.Delimiter, "delimiter", conf.Delimiter, "Field delimiter")
	flag.BoolVar(&conf.Staged, "staged", false,
		"Write the outputs only once every stage succeeded")
	flag.StringVar(&conf.SourceURL, "source.url", defaultSourceURL,
		"Page holding the dataset download link")
	flag.StringVar(&conf.DownloadDir, "download.dir", "./downloads",
		"Directory the dataset is downloaded to")
	flag.StringVar(&conf.InputExt, "download.ext", conf.InputExt,
		"Extension of the downloaded dataset file")
	flag.DurationVar(&downloadTimeout, "download.timeout", 2*time.Minute,
		"Timeout for the dataset download")
	flag.BoolVar(&headless, "headless", true, "Run the download browser headless")
}

func main() {
	flag.Parse()
	log.SetFlags(log.LUTC | log.Lshortfile | log.LstdFlags)
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")
	rtx.Must(conf.Validate(), "Invalid configuration")

	downloader := acquire.NewBrowserDownloader(headless, downloadTimeout)
	res, err := pipeline.RunDataset(mainCtx, conf, downloader,
		output.NewLocalWriter(outputDir), input)
	rtx.Must(err, "Processing failed after %s", strings.Join(res.CompletedSteps, ", "))

	for _, p := range res.Outputs {
		log.Printf("Wrote %s", p)
	}
}
