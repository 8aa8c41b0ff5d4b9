package pipeline

import "errors"

var (
	errUnknownDataset = errors.New("unknown dataset")
	errAlreadyRunning = errors.New("the pipeline is running already")
)
