package ui

import (
	"manimark/internal/pipeline"
	"manimark/internal/progress"
)

type updateMsg struct {
	U progress.Update
}

type logMsg struct {
	L progress.Log
}

// finishedMsg is sent once when the pipeline returns.
type finishedMsg struct {
	Res pipeline.Result
	Err error
}
