package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sheetwise/internal/config"
	"github.com/nconklindev/sheetwise/internal/processor"
	"github.com/nconklindev/sheetwise/internal/sheet"
	"github.com/nconklindev/sheetwise/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateOperationSelection
	stateColumnSelection
	stateProcessing
	stateComplete
	stateError
)

type operation int

const (
	opStandardize operation = iota
	opPartition
)

var operationLabels = []string{
	"Standardize columns",
	"Split by column value",
}

type Model struct {
	state        state
	filepicker   filepicker.Model
	selectedFile string
	table        *types.Table
	detectedCols []int
	operation    operation
	cursor       int
	keyColumn    string
	cfg          *config.Config
	sheetOpts    sheet.Options
	proc         *processor.Processor
	standardized *types.StandardizeResult
	partitioned  *types.PartitionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan operationResultMsg
}

type operationResultMsg struct {
	standardized *types.StandardizeResult
	partitioned  *types.PartitionResult
	err          error
}

type fileLoadedMsg struct {
	table *types.Table
	err   error
}

type operationCompleteMsg operationResultMsg

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(cfg *config.Config, sheetOpts sheet.Options, proc *processor.Processor) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorLight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorLight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	prog := progress.New(progress.WithGradient(string(colorAccent), string(colorLight)))

	return Model{
		state:      stateFilePicker,
		filepicker: fp,
		cfg:        cfg,
		sheetOpts:  sheetOpts,
		proc:       proc,
		progress:   prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Subtract space for title, subtitle, help text, and padding
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}

		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateOperationSelection:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(operationLabels)-1 {
					m.cursor++
				}
			case "enter":
				m.operation = operation(m.cursor)
				if m.operation == opStandardize {
					m.state = stateProcessing
					return m.runOperation()
				}
				m.state = stateColumnSelection
				m.cursor = m.defaultKeyColumn()
			}
			return m, nil

		case stateColumnSelection:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc":
				m.state = stateOperationSelection
				m.cursor = int(opPartition)
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.table.Columns)-1 {
					m.cursor++
				}
			case "enter":
				if len(m.table.Columns) > 0 {
					m.keyColumn = m.table.Columns[m.cursor].Name
					m.state = stateProcessing
					return m.runOperation()
				}
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case fileLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.table = msg.table
		m.detectedCols = sheet.DetectDateColumns(msg.table)
		m.cursor = 0
		m.state = stateOperationSelection
		return m, nil

	case operationCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.partitioned = msg.partitioned
			m.state = stateError
			return m, nil
		}
		m.standardized = msg.standardized
		m.partitioned = msg.partitioned
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}

		return m, cmd
	}

	return m, nil
}

// defaultKeyColumn prefers the configured key column, then the first
// detected date column.
func (m Model) defaultKeyColumn() int {
	if idx := m.table.Index(m.cfg.Partition.KeyColumn); idx != -1 {
		return idx
	}
	if len(m.detectedCols) > 0 {
		return m.detectedCols[0]
	}
	return 0
}

func (m Model) loadFile(path string) tea.Cmd {
	opts := m.sheetOpts
	return func() tea.Msg {
		t, err := sheet.ReadTable(path, opts)
		return fileLoadedMsg{table: t, err: err}
	}
}

func (m Model) runOperation() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan operationResultMsg, 1)

	// Capture everything the goroutine needs
	progressChan := m.progressChan
	resultChan := m.resultChan
	selectedFile := m.selectedFile
	op := m.operation
	keyColumn := m.keyColumn
	proc := m.proc
	cfg := m.cfg

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				var res operationResultMsg

				switch op {
				case opStandardize:
					res.standardized, res.err = proc.Standardize(
						selectedFile,
						processor.StandardizedPath(selectedFile, cfg.Standardize.OutputSuffix),
						cfg.Standardize.Mapping,
						cfg.Standardize.NewColumn,
						cfg.Standardize.NewValue,
						progressChan,
					)
				case opPartition:
					outputDir := filepath.Join(filepath.Dir(selectedFile), cfg.Partition.OutputDir)
					res.partitioned, res.err = proc.PartitionByColumn(selectedFile, keyColumn, outputDir, progressChan)
				}

				resultChan <- res

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan operationResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return operationCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateOperationSelection:
		return m.viewOperationSelection()
	case stateColumnSelection:
		return m.viewColumnSelection()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Sheetwise - Spreadsheet Standardizer"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV or XLSX file"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewOperationSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Choose an Operation"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s • %d rows • %d columns",
		filepath.Base(m.selectedFile), m.table.NumRows(), len(m.table.Columns))))
	s.WriteString("\n\n")

	for i, label := range operationLabels {
		line := fmt.Sprintf("  %s", label)
		if m.cursor == i {
			line = SelectedStyle.Render(fmt.Sprintf("> %s", label))
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.cursor == int(opStandardize) {
		s.WriteString(m.viewMapping())
	} else {
		s.WriteString(fmt.Sprintf("Output folder: %s\n", m.cfg.Partition.OutputDir))
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewMapping() string {
	var s strings.Builder

	for _, header := range m.table.Headers() {
		to, ok := m.cfg.Standardize.Mapping[header]
		if !ok {
			continue
		}
		s.WriteString(CheckedStyle.Render(fmt.Sprintf("%s → %s", header, to)))
		s.WriteString("\n")
	}
	s.WriteString(fmt.Sprintf("New column: %s = %q\n", m.cfg.Standardize.NewColumn, m.cfg.Standardize.NewValue))

	return s.String()
}

func (m Model) viewColumnSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Select the Column to Split By"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n\n")

	if len(m.detectedCols) > 0 {
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ Auto-detected %d date column(s)", len(m.detectedCols))))
		s.WriteString("\n\n")
	}

	for i, header := range m.table.Headers() {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		line := fmt.Sprintf("%s %s", cursor, header)

		isDetected := false
		for _, idx := range m.detectedCols {
			if idx == i {
				isDetected = true
				break
			}
		}

		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else if isDetected {
			line = CheckedStyle.Render(line + " (date)")
		} else {
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: split • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Processing..."))
	s.WriteString("\n\n")
	if m.operation == opStandardize {
		s.WriteString("Standardizing columns...")
	} else {
		s.WriteString(fmt.Sprintf("Splitting rows by %s...", m.keyColumn))
	}
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) truncatePath(path string) string {
	maxPathLen := m.width - 20 // Leave room for padding and borders
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	if len(path) > maxPathLen {
		return "..." + path[len(path)-maxPathLen+3:]
	}
	return path
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Done!"))
	s.WriteString("\n\n")

	if r := m.standardized; r != nil {
		s.WriteString(fmt.Sprintf("Input:  %s\n", m.truncatePath(r.InputFile)))
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", m.truncatePath(r.OutputFile))))
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(r.Columns, ", ")))
		s.WriteString(fmt.Sprintf("Rows processed: %d\n", r.RowsProcessed))
	}

	if r := m.partitioned; r != nil {
		s.WriteString(fmt.Sprintf("Input:  %s\n", m.truncatePath(r.InputFile)))
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Folder: %s\n", m.truncatePath(r.OutputDir))))
		s.WriteString("\n")
		for _, f := range r.Files {
			s.WriteString(fmt.Sprintf("%s (%d rows)\n", filepath.Base(f.Path), f.Rows))
		}
		if r.SkippedRows > 0 {
			s.WriteString(fmt.Sprintf("Rows without %s: %d\n", r.KeyColumn, r.SkippedRows))
		}
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n")

	if m.partitioned != nil && len(m.partitioned.Files) > 0 {
		s.WriteString(fmt.Sprintf("\n%d file(s) were written before the failure.\n", len(m.partitioned.Files)))
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
