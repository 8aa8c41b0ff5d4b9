package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"runtime"
	"time"

	"cloud.google.com/go/storage"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/httpx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/go/uploader"
	"github.com/m-lab/tb-stats-pipeline/acquire"
	"github.com/m-lab/tb-stats-pipeline/config"
	"github.com/m-lab/tb-stats-pipeline/exporter"
	"github.com/m-lab/tb-stats-pipeline/output"
	"github.com/m-lab/tb-stats-pipeline/pipeline"
)

var (
	listenAddr      string
	bucket          string
	outputDir       string
	downloadTimeout time.Duration
	headless        bool

	configFile = flagx.File{}
	mainCtx    = context.Background()
)

func init() {
	flag.StringVar(&listenAddr, "listenaddr", ":8080", "Address to listen on")
	flag.StringVar(&bucket, "bucket", "",
		"GCS bucket to export the results to. If empty, -output.dir is used")
	flag.StringVar(&outputDir, "output.dir", "./output",
		"Local directory to export the results to")
	flag.DurationVar(&downloadTimeout, "download.timeout", 2*time.Minute,
		"Timeout for each dataset download")
	flag.BoolVar(&headless, "headless", true, "Run the download browser headless")
	flag.Var(&configFile, "config", "JSON configuration file")
}

func makeHTTPServer(listenAddr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:    listenAddr,
		Handler: h,
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.LUTC | log.Lshortfile | log.LstdFlags)
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")

	// Try parsing provided config file.
	var configs map[string]config.Config
	err := json.Unmarshal(configFile.Get(), &configs)
	rtx.Must(err, "cannot parse configuration file")
	for name, c := range configs {
		rtx.Must(c.WithDefaults().Validate(), "invalid configuration for %s", name)
	}

	var w exporter.Writer
	if bucket != "" {
		gcsClient, err := storage.NewClient(mainCtx)
		rtx.Must(err, "error initializing GCS client")
		w = output.NewGCSWriter(uploader.New(stiface.AdaptClient(gcsClient), bucket))
	} else {
		w = output.NewLocalWriter(outputDir)
	}

	downloader := acquire.NewBrowserDownloader(headless, downloadTimeout)

	// Initialize handlers.
	pipelineHandler := pipeline.NewHandler(downloader, w, configs)

	// Initialize mux.
	mux := http.NewServeMux()
	mux.Handle("/v0/pipeline", pipelineHandler)

	log.Printf("GOMAXPROCS is %d", runtime.GOMAXPROCS(0))

	// Start main HTTP server.
	s := makeHTTPServer(listenAddr, mux)
	rtx.Must(httpx.ListenAndServeAsync(s), "Could not start HTTP server")
	defer s.Close()

	// Start Prometheus server for monitoring.
	promServer := prometheusx.MustServeMetrics()
	defer promServer.Close()

	// Keep serving until the context is canceled.
	<-mainCtx.Done()
}
