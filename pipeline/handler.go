package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/m-lab/tb-stats-pipeline/acquire"
	"github.com/m-lab/tb-stats-pipeline/config"
	"github.com/m-lab/tb-stats-pipeline/exporter"
)

// pipelineResult is the JSON body returned by the /v0/pipeline endpoint.
type pipelineResult struct {
	CompletedSteps []string `json:"completedSteps"`
	Outputs        []string `json:"outputs"`
	Errors         []string `json:"errors"`
}

func newPipelineResult() *pipelineResult {
	return &pipelineResult{
		CompletedSteps: []string{},
		Outputs:        []string{},
		Errors:         []string{},
	}
}

// Handler runs the pipeline for the configured datasets.
type Handler struct {
	downloader acquire.Downloader
	output     exporter.Writer
	configs    map[string]config.Config

	// pipelineCanRun holds a token while no run is in progress.
	pipelineCanRun chan bool
}

// NewHandler returns a new Handler. Datasets are downloaded with d when
// needed and their outputs written to output.
func NewHandler(d acquire.Downloader, output exporter.Writer,
	configs map[string]config.Config) *Handler {
	canRun := make(chan bool, 1)
	canRun <- true
	return &Handler{
		downloader:     d,
		output:         output,
		configs:        configs,
		pipelineCanRun: canRun,
	}
}

// ServeHTTP handles requests to the /v0/pipeline endpoint.
// This endpoint runs the processing pipeline for every configured dataset,
// or only for the one selected by the querystring.
//
// The querystring parameters are:
// - name (optional): the dataset to process.
//
// This endpoint accepts only POST requests. Only one run can be in progress
// at any time.
func (h *Handler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	result := newPipelineResult()
	if req.Method != http.MethodPost {
		result.Errors = append(result.Errors, http.StatusText(http.StatusMethodNotAllowed))
		sendResponse(rw, http.StatusMethodNotAllowed, result)
		return
	}

	names := []string{}
	if name := req.URL.Query().Get("name"); name != "" {
		if _, ok := h.configs[name]; !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%v: %s", errUnknownDataset, name))
			sendResponse(rw, http.StatusNotFound, result)
			return
		}
		names = append(names, name)
	} else {
		for name := range h.configs {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	select {
	case <-h.pipelineCanRun:
		defer func() { h.pipelineCanRun <- true }()
	default:
		result.Errors = append(result.Errors, errAlreadyRunning.Error())
		sendResponse(rw, http.StatusConflict, result)
		return
	}

	for _, name := range names {
		log.Printf("Processing dataset %s...", name)
		res, err := RunDataset(req.Context(), h.configs[name], h.downloader, h.output, "")
		for _, s := range res.CompletedSteps {
			result.CompletedSteps = append(result.CompletedSteps, name+"/"+s)
		}
		result.Outputs = append(result.Outputs, res.Outputs...)
		if err != nil {
			// If one of the datasets fails, we still want to try the
			// remaining ones.
			log.Printf("Cannot process dataset %s: %v", name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	status := http.StatusOK
	if len(result.Errors) > 0 {
		status = http.StatusInternalServerError
	}
	sendResponse(rw, status, result)
}

func sendResponse(rw http.ResponseWriter, statusCode int, result *pipelineResult) {
	b, err := json.Marshal(result)
	if err != nil {
		log.Printf("Cannot marshal pipeline result: %v", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	rw.Write(b)
}
