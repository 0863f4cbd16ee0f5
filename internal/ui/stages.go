package ui

import (
	"manimark/internal/model"
	"manimark/internal/progress"
)

type rowState int

const (
	rowPending rowState = iota
	rowActive
	rowDone
	rowFailed
)

type stageRow struct {
	stage progress.Stage
	label string
	state rowState
}

// stageRows lists the steps a run with opts goes through, in order.
func stageRows(opts model.Options) []stageRow {
	rows := []stageRow{
		{stage: progress.StageRender, label: "Render " + opts.Quality.Label()},
		{stage: progress.StageLocate, label: "Locate video"},
	}
	if opts.NoWatermark {
		return append(rows, stageRow{stage: progress.StageCopy, label: "Copy to output"})
	}
	rows = append(rows,
		stageRow{stage: progress.StageWatermark, label: "Watermark image"},
		stageRow{stage: progress.StageComposite, label: "Composite"},
	)
	if !opts.KeepOriginal {
		rows = append(rows, stageRow{stage: progress.StageCleanup, label: "Remove original"})
	}
	return rows
}

// activate marks st active and every earlier row done. Stages without a row
// (probe) leave the list untouched.
func activate(rows []stageRow, st progress.Stage) {
	idx := -1
	for i := range rows {
		if rows[i].stage == st {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := range rows {
		switch {
		case i < idx:
			rows[i].state = rowDone
		case i == idx && rows[i].state != rowFailed:
			rows[i].state = rowActive
		}
	}
}

// fail marks the active row failed.
func fail(rows []stageRow) {
	for i := range rows {
		if rows[i].state == rowActive {
			rows[i].state = rowFailed
			return
		}
	}
}

func completeAll(rows []stageRow) {
	for i := range rows {
		rows[i].state = rowDone
	}
}
