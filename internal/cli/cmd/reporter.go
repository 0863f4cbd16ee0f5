package cmd

import (
	"manimark/internal/logging"
	"manimark/internal/progress"
)

// logReporter prints pipeline progress through the leveled logger when the
// TUI is off. Tool output is echoed by the subprocess layer in verbose mode,
// so only pipeline notes and warnings are logged here.
type logReporter struct {
	log      *logging.Logger
	lastPct  int
	lastStep progress.Stage
}

func newLogReporter(log *logging.Logger) *logReporter {
	return &logReporter{log: log, lastPct: -1}
}

func (r *logReporter) Update(u progress.Update) {
	switch {
	case u.Stage == progress.StageCompleted:
		r.log.Success("%s", u.Message)
	case u.Stage == progress.StageError:
		// Returned to the caller and printed on exit.
	case u.Percent < 0:
		r.log.Info("%s", u.Message)
		r.lastStep, r.lastPct = u.Stage, -1
	default:
		// One line per 10% step.
		pct := int(u.Percent) / 10 * 10
		if u.Stage == r.lastStep && pct == r.lastPct {
			return
		}
		r.lastStep, r.lastPct = u.Stage, pct
		r.log.Debug("%s %3d%% %s", u.Stage, pct, u.Message)
	}
}

func (r *logReporter) Log(l progress.Log) {
	switch l.Stream {
	case progress.StreamWarning:
		r.log.Warn("%s", l.Line)
	case progress.StreamNote:
		r.log.Info("%s", l.Line)
	}
}

func (r *logReporter) Result(progress.Result) {}
