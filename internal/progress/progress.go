package progress

import "time"

// Stage identifies a high-level step in the pipeline.
type Stage string

const (
	StageRender    Stage = "render"
	StageLocate    Stage = "locate"
	StageProbe     Stage = "probe"
	StageWatermark Stage = "watermark"
	StageComposite Stage = "composite"
	StageCopy      Stage = "copy"
	StageCleanup   Stage = "cleanup"
	StageCompleted Stage = "completed"
	StageError     Stage = "error"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
	// StreamNote and StreamWarning carry pipeline messages rather than tool output.
	StreamNote
	StreamWarning
)

// Update conveys progress or stage changes.
// Percent is 0..100 when known; set to a negative value (e.g., -1) to mean unknown.
type Update struct {
	Stage   Stage
	Percent float64 // 0..100, or <0 if unknown

	ETA     *time.Duration // optional
	Speed   *string        // optional, e.g. "1.2x" or "14.2it/s"
	Message string         // short human-friendly status line
}

// Log is a structured log line associated with the run.
type Log struct {
	Stage  Stage
	Stream LogStream
	Line   string
}

// Result is emitted once when the run completes or fails.
type Result struct {
	OutputPath string
	Bytes      int64
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Discard is a Reporter that drops every event.
type Discard struct{}

func (Discard) Update(Update) {}
func (Discard) Log(Log)       {}
func (Discard) Result(Result) {}
