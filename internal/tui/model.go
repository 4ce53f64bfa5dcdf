// Package tui implements the interactive dashboard: two operand fields, a
// list of algorithms racing on them with live progress, the product, and
// host resource usage.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/config"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/orchestration"
	"github.com/agbru/karacalc/internal/sysmon"
)

const (
	// DefaultRandomDigits is the operand length of the random key when
	// -random is not set.
	DefaultRandomDigits = 1000
	tickInterval        = 500 * time.Millisecond
)

// focus identifies the section receiving editing keys.
type focus int

const (
	focusX focus = iota
	focusY
	focusAlgorithms
	focusCount
)

type laneStatus int

const (
	laneIdle laneStatus = iota
	laneRunning
	laneDone
	laneFailed
)

// lane is one algorithm row of the race.
type lane struct {
	name     string
	status   laneStatus
	progress float64
	duration time.Duration
	err      error
	rank     int
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	keymap  KeyMap
	header  HeaderModel
	metrics MetricsModel

	calculators []karatsuba.Calculator
	lanes       []lane
	cursor      int
	inputs      [2]operandInput
	focus       focus

	opts         karatsuba.Options
	timeout      time.Duration
	randomDigits int
	rng          *rand.Rand

	parentCtx  context.Context
	cancel     context.CancelFunc
	ref        *programRef
	generation uint64
	running    bool
	active     []int

	x, y      bigint.Int
	result    orchestration.CalculationResult
	hasResult bool
	raced     int
	resultErr error
	inputErr  error
	exitCode  int

	showFull bool
	showHelp bool
	width    int
	height   int
}

// NewModel creates the dashboard. cfg supplies the engine options, the
// timeout of each run, initial operands and the random operand length.
func NewModel(parentCtx context.Context, calculators []karatsuba.Calculator, cfg config.AppConfig, version string) Model {
	lanes := make([]lane, len(calculators))
	for i, c := range calculators {
		lanes[i] = lane{name: c.Name()}
	}
	digits := cfg.Random
	if digits <= 0 {
		digits = DefaultRandomDigits
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return Model{
		keymap:       DefaultKeyMap(),
		header:       NewHeaderModel(version),
		metrics:      NewMetricsModel(),
		calculators:  calculators,
		lanes:        lanes,
		inputs:       [2]operandInput{newOperandInput("X", cfg.X), newOperandInput("Y", cfg.Y)},
		opts:         cfg.ToOptions(),
		timeout:      timeout,
		randomDigits: digits,
		rng:          rand.New(rand.NewSource(seed)),
		parentCtx:    parentCtx,
		ref:          &programRef{},
		exitCode:     apperrors.ExitSuccess,
	}
}

// Init starts resource sampling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), sampleMemStatsCmd(), sampleSysStatsCmd())
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.metrics.SetWidth(msg.Width)
		return m, nil

	case ProgressMsg:
		if msg.Generation != m.generation || !m.running {
			return m, nil
		}
		if msg.CalculatorIndex >= 0 && msg.CalculatorIndex < len(m.active) {
			l := &m.lanes[m.active[msg.CalculatorIndex]]
			if msg.Failed {
				l.status = laneFailed
			} else {
				l.progress = msg.Value
			}
		}
		m.metrics.UpdateProgress(msg.AverageProgress)
		return m, nil

	case CalculationDoneMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.finish(msg)
		return m, nil

	case TickMsg:
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.metrics.UpdateSysStats(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.stop()
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help) || key.Matches(msg, m.keymap.Cancel) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Cancel):
		if m.running {
			m.stop()
		} else {
			m.inputErr = nil
		}
	case key.Matches(msg, m.keymap.NextField):
		m.focus = (m.focus + 1) % focusCount
	case key.Matches(msg, m.keymap.PrevField):
		m.focus = (m.focus + focusCount - 1) % focusCount
	case key.Matches(msg, m.keymap.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keymap.Down):
		m.cursor = min(m.cursor+1, len(m.lanes)-1)
	case key.Matches(msg, m.keymap.Calculate):
		return m.start([]int{m.cursor})
	case key.Matches(msg, m.keymap.Compare):
		all := make([]int, len(m.calculators))
		for i := range all {
			all[i] = i
		}
		return m.start(all)
	case key.Matches(msg, m.keymap.Random):
		if !m.running {
			m.inputs[0].SetValue(bigint.Random(m.rng, m.randomDigits).String())
			m.inputs[1].SetValue(bigint.Random(m.rng, m.randomDigits).String())
			m.inputErr = nil
		}
	case key.Matches(msg, m.keymap.ToggleFull):
		m.showFull = !m.showFull
	default:
		if m.focus < focusAlgorithms && !m.running {
			m.inputs[m.focus].HandleKey(msg)
		}
	}
	return m, nil
}

// start launches the calculators at lanes indices on the current operands.
func (m Model) start(indices []int) (tea.Model, tea.Cmd) {
	if m.running || len(indices) == 0 || len(m.calculators) == 0 {
		return m, nil
	}
	x, err := parseOperand(m.inputs[0])
	if err != nil {
		m.inputErr = err
		return m, nil
	}
	y, err := parseOperand(m.inputs[1])
	if err != nil {
		m.inputErr = err
		return m, nil
	}

	m.generation++
	ctx, cancel := context.WithTimeout(m.parentCtx, m.timeout)
	m.cancel = cancel
	m.running = true
	m.active = indices
	m.x, m.y = x, y
	m.hasResult = false
	m.resultErr = nil
	m.inputErr = nil
	m.raced = len(indices)
	for i := range m.lanes {
		m.lanes[i] = lane{name: m.lanes[i].name}
	}
	calcs := make([]karatsuba.Calculator, len(indices))
	for i, idx := range indices {
		calcs[i] = m.calculators[idx]
		m.lanes[idx].status = laneRunning
	}
	m.header.Start()
	m.metrics.StartRun()

	reporter := &TUIProgressReporter{ref: m.ref, generation: m.generation}
	return m, runCalculationCmd(ctx, cancel, reporter, m.generation, indices, calcs, x, y, m.opts)
}

func parseOperand(in operandInput) (bigint.Int, error) {
	if in.Value() == "" {
		return bigint.Int{}, fmt.Errorf("%s is empty", in.label)
	}
	v, err := bigint.Parse(in.Value())
	if err != nil {
		return bigint.Int{}, fmt.Errorf("%s: %w", in.label, err)
	}
	return v, nil
}

// finish records the outcome of a run.
func (m *Model) finish(msg CalculationDoneMsg) {
	m.running = false
	m.cancel = nil
	m.header.SetDone()
	m.metrics.FinishRun()

	sorted := make([]orchestration.CalculationResult, len(msg.Results))
	copy(sorted, msg.Results)
	orchestration.SortResults(sorted)
	for i, res := range msg.Results {
		l := &m.lanes[msg.Lanes[i]]
		l.duration = res.Duration
		l.err = res.Err
		if res.Err != nil {
			l.status = laneFailed
			continue
		}
		l.status = laneDone
		l.progress = 1
		for rank, s := range sorted {
			if s.Name == res.Name {
				l.rank = rank + 1
				break
			}
		}
	}

	best, err := orchestration.CompareResults(msg.Results)
	m.result = best
	m.resultErr = err
	m.hasResult = err == nil
	m.exitCode = apperrors.ExitCode(err)
}

// stop cancels the running calculation, if any.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// runCalculationCmd races calcs on x and y and reports the results.
func runCalculationCmd(ctx context.Context, cancel context.CancelFunc, reporter *TUIProgressReporter, gen uint64, lanes []int, calcs []karatsuba.Calculator, x, y bigint.Int, opts karatsuba.Options) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		results := orchestration.ExecuteCalculations(ctx, calcs, x, y, opts, reporter, io.Discard)
		return CalculationDoneMsg{
			Generation: gen,
			Lanes:      lanes,
			Results:    results,
			Elapsed:    time.Since(start),
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// Run starts the dashboard and blocks until the user quits. It returns the
// exit code of the last run.
func Run(ctx context.Context, calculators []karatsuba.Calculator, cfg config.AppConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, calculators, cfg, version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.stop()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if fm, ok := final.(Model); ok {
		return fm.exitCode
	}
	return apperrors.ExitSuccess
}
