package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// File states in the batch view.
const (
	filePending = iota
	fileRunning
	fileDone
	fileFailed
)

// fileStartMsg marks a file as running.
type fileStartMsg struct{ index int }

// fileDoneMsg carries the outcome for a single file.
type fileDoneMsg struct {
	index  int
	pages  int
	blocks int
	err    error
}

// batchDoneMsg ends the program once every file has been processed.
type batchDoneMsg struct{}

// tickMsg drives the spinner animation.
type tickMsg time.Time

// BatchModel is the bubbletea model for multi-file parse progress.
type BatchModel struct {
	Files    []string
	states   []int
	pages    []int
	blocks   []int
	errs     []error
	frame    int
	quitting bool
}

// NewBatchModel creates a batch progress model for the given input files.
func NewBatchModel(files []string) *BatchModel {
	return &BatchModel{
		Files:  files,
		states: make([]int, len(files)),
		pages:  make([]int, len(files)),
		blocks: make([]int, len(files)),
		errs:   make([]error, len(files)),
	}
}

// FirstError returns the first failure in file order, if any.
func (m *BatchModel) FirstError() error {
	for _, err := range m.errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *BatchModel) Init() tea.Cmd {
	return tick()
}

func (m *BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case fileStartMsg:
		m.states[msg.index] = fileRunning
	case fileDoneMsg:
		if msg.err != nil {
			m.states[msg.index] = fileFailed
			m.errs[msg.index] = msg.err
		} else {
			m.states[msg.index] = fileDone
			m.pages[msg.index] = msg.pages
			m.blocks[msg.index] = msg.blocks
		}
	case batchDoneMsg:
		m.quitting = true
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m *BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Parsing documents"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	done := 0
	for i, file := range m.Files {
		name := filepath.Base(file)
		switch m.states[i] {
		case filePending:
			b.WriteString(listDimStyle.Render("  · " + name))
		case fileRunning:
			frame := spinnerFrames[m.frame%len(spinnerFrames)]
			b.WriteString(listSelectedStyle.Render("  "+frame+" ") + listNormalStyle.Render(name))
		case fileDone:
			done++
			detail := fmt.Sprintf("%d pages, %d blocks", m.pages[i], m.blocks[i])
			b.WriteString(StyleSuccess.Render("  "+iconSuccess+" ") + listNormalStyle.Render(name) + "  " + listDimStyle.Render(detail))
		case fileFailed:
			done++
			b.WriteString(styleIconError.Render("  "+iconError+" ") + listNormalStyle.Render(name) + "  " + listDimStyle.Render(shortError(m.errs[i])))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", done, len(m.Files))))
	if m.quitting {
		b.WriteString("\n")
	}

	return b.String()
}

// shortError keeps failure lines to a single row.
func shortError(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

// runParseTUI processes the inputs sequentially while an interactive view
// tracks progress. The first failure is returned after all files ran, so a
// bad document does not abort the rest of the batch.
func (c *CLI) runParseTUI(ctx context.Context, runner *pipeline.Runner, args []string, opts *parseOpts) error {
	model := NewBatchModel(args)
	prog := tea.NewProgram(model, tea.WithContext(ctx))

	go func() {
		for i, arg := range args {
			prog.Send(fileStartMsg{index: i})
			pages, blocks, err := c.parseQuiet(ctx, runner, arg, opts)
			prog.Send(fileDoneMsg{index: i, pages: pages, blocks: blocks, err: err})
		}
		prog.Send(batchDoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		return err
	}
	return model.FirstError()
}

// parseQuiet runs the parse flow for one file without terminal output.
func (c *CLI) parseQuiet(ctx context.Context, runner *pipeline.Runner, arg string, opts *parseOpts) (pages, blocks int, err error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return 0, 0, err
	}
	outputs, err := runner.ParseAndExport(ctx, abs, opts.outputDir, opts.pipelineOptions(ctx))
	if err != nil {
		return 0, 0, err
	}
	raw, err := document.ImportRaw(pipeline.OutputPath(abs, opts.outputDir, pipeline.FormatJSON))
	if err != nil {
		return 0, 0, err
	}
	pages, blocks = rawCounts(raw)
	if !opts.noRecord {
		c.recordParse(ctx, abs, raw, outputs, opts)
	}
	return pages, blocks, nil
}
