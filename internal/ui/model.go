package ui

import (
	"context"
	"strings"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"manimark/internal/model"
	"manimark/internal/pipeline"
	"manimark/internal/progress"
)

const maxLogLines = 200

// Model is the bubbletea model for one pipeline run.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	opts    model.Options
	svcOpts []pipeline.Option

	rows     []stageRow
	status   string
	percent  float64 // -1 means unknown
	eta      *time.Duration
	speed    *string
	logs     []string
	warnings []string

	done   bool
	result pipeline.Result
	err    error

	spinner spinner.Model
	bar     bubblesprogress.Model
	styles  Styles

	// Internal event channel used by the reporter to feed tea messages
	eventCh chan tea.Msg
}

// NewModel prepares a model that will run a pipeline.Service built from
// svcOpts, with its reporter pointed at the UI.
func NewModel(ctx context.Context, opts model.Options, svcOpts ...pipeline.Option) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()
	sp := spinner.New()
	sp.Style = sty.Spinner
	return Model{
		ctx:     c,
		cancel:  cancel,
		opts:    opts,
		svcOpts: svcOpts,
		rows:    stageRows(opts),
		status:  "Starting",
		percent: -1,
		spinner: sp,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(40),
		),
		styles:  sty,
		eventCh: make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenEventsCmd(), m.runPipelineCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			if m.err == nil && !m.done {
				m.err = context.Canceled
			}
			return m, tea.Quit
		}

	case updateMsg:
		m.applyUpdate(msg.U)
		return m, m.listenEventsCmd()

	case logMsg:
		m.applyLog(msg.L)
		return m, m.listenEventsCmd()

	case finishedMsg:
		m.done = true
		m.result = msg.Res
		m.err = msg.Err
		if msg.Err != nil {
			fail(m.rows)
			m.status = msg.Err.Error()
		} else {
			completeAll(m.rows)
			m.percent = 100
		}
		return m, tea.Quit

	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) applyUpdate(u progress.Update) {
	switch u.Stage {
	case progress.StageError:
		fail(m.rows)
	case progress.StageCompleted:
		completeAll(m.rows)
	default:
		activate(m.rows, u.Stage)
	}
	if u.Message != "" {
		m.status = u.Message
	}
	m.percent = u.Percent
	m.eta = u.ETA
	m.speed = u.Speed
}

func (m *Model) applyLog(l progress.Log) {
	line := strings.TrimRight(l.Line, "\r\n")
	if l.Stream == progress.StreamWarning {
		m.warnings = append(m.warnings, line)
		return
	}
	// small ring buffer
	if len(m.logs) >= maxLogLines {
		m.logs = m.logs[1:]
	}
	m.logs = append(m.logs, line)
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewStages() + "\n" + m.viewStatus() + m.viewFooter()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// runPipelineCmd runs the whole pipeline on the command's goroutine.
func (m Model) runPipelineCmd() tea.Cmd {
	return func() tea.Msg {
		opts := append(append([]pipeline.Option{}, m.svcOpts...),
			pipeline.WithReporter(teaReporter{ctx: m.ctx, ch: m.eventCh}))
		res, err := pipeline.NewService(opts...).Run(m.ctx)
		return finishedMsg{Res: res, Err: err}
	}
}

type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on terminal updates so they are not dropped
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		select {
		case r.ch <- updateMsg{U: u}:
		case <-r.ctx.Done():
		}
		return
	}
	select {
	case r.ch <- updateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	if l.Stream == progress.StreamWarning {
		select {
		case r.ch <- logMsg{L: l}:
		case <-r.ctx.Done():
		}
		return
	}
	select {
	case r.ch <- logMsg{L: l}:
	default:
	}
}

// Result is delivered through finishedMsg instead.
func (r teaReporter) Result(progress.Result) {}
