package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thereceipt/receipt-demo/internal/command"
)

// CommandModel handles the ':' command line
type CommandModel struct {
	input      textinput.Model
	visible    bool
	lastResult *command.Result
	width      int
	height     int
	scrollPos  int

	// When lastResult contains printers, allow copying IDs
	printerIDs         []string
	selectedPrinterIdx int
}

// NewCommandModel creates a new command model
func NewCommandModel() CommandModel {
	input := textinput.New()
	input.Placeholder = "Enter command (e.g., 'printer list', 'help')"
	input.CharLimit = 200
	input.Prompt = "> "
	input.PromptStyle = InputLabelFocusedStyle

	return CommandModel{
		input: input,
		width: 80,
	}
}

// SetSize sets the component width
func (m *CommandModel) SetSize(width int) {
	if width < 40 {
		width = 40
	}
	m.width = width
	m.input.Width = width - 6
}

// SetHeight sets the maximum height for the command view
func (m *CommandModel) SetHeight(height int) {
	m.height = height
}

// Show shows the command input
func (m *CommandModel) Show() {
	m.visible = true
	m.input.Focus()
	m.lastResult = nil
	m.scrollPos = 0
	m.printerIDs = nil
	m.selectedPrinterIdx = 0
}

// Hide hides the command input
func (m *CommandModel) Hide() {
	m.visible = false
	m.input.Blur()
	m.input.SetValue("")
	m.printerIDs = nil
}

// IsVisible returns whether the command input is visible
func (m *CommandModel) IsVisible() bool {
	return m.visible
}

// SetResult shows the outcome of a command
func (m *CommandModel) SetResult(res *command.Result) {
	m.lastResult = res
	m.scrollPos = 0
	m.printerIDs = extractPrinterIDs(res)
	m.selectedPrinterIdx = 0
}

// Update handles messages
func (m CommandModel) Update(msg tea.Msg) (CommandModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "enter":
		cmdStr := strings.TrimSpace(m.input.Value())
		if cmdStr == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, request(cmdStr, cmdStr)
	case "esc":
		m.Hide()
		return m, nil
	case "up":
		if m.scrollPos > 0 {
			m.scrollPos--
		}
		return m, nil
	case "down":
		m.scrollPos++
		return m, nil
	case "ctrl+j":
		if m.selectedPrinterIdx < len(m.printerIDs)-1 {
			m.selectedPrinterIdx++
		}
		return m, nil
	case "ctrl+k":
		if m.selectedPrinterIdx > 0 {
			m.selectedPrinterIdx--
		}
		return m, nil
	case "ctrl+y":
		if m.selectedPrinterIdx < len(m.printerIDs) && m.lastResult != nil && m.lastResult.Success {
			if err := copyToClipboard(m.printerIDs[m.selectedPrinterIdx]); err != nil {
				m.lastResult.Message = fmt.Sprintf("%s (copy failed: %v)", m.lastResult.Message, err)
			} else {
				m.lastResult.Message = fmt.Sprintf("%s (copied printer ID)", m.lastResult.Message)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// View renders the command area
func (m CommandModel) View() string {
	if !m.visible {
		return ""
	}

	available := m.height - 3
	if available < 1 {
		available = 1
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	lines := m.resultLines()
	maxScroll := len(lines) - available
	if maxScroll < 0 {
		maxScroll = 0
	}
	start := m.scrollPos
	if start > maxScroll {
		start = maxScroll
	}
	end := start + available
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	help := "Enter to execute, Esc to close"
	if len(lines) > available {
		help += ", up/down to scroll"
	}
	if len(m.printerIDs) > 0 {
		help += ", Ctrl+J/K select printer, Ctrl+Y copy ID"
	}
	b.WriteString(TextMuted.Render(help))
	return b.String()
}

func (m CommandModel) resultLines() []string {
	res := m.lastResult
	if res == nil {
		return nil
	}
	width := m.width - 4

	var lines []string
	if !res.Success {
		for _, l := range wrapText("x "+res.Error, width) {
			lines = append(lines, ErrorStyle.Render(l))
		}
		return lines
	}

	for _, l := range strings.Split(res.Message, "\n") {
		for _, w := range wrapText(l, width) {
			lines = append(lines, SuccessStyle.Render(w))
		}
	}

	if printers, ok := res.Data["printers"].([]map[string]interface{}); ok {
		for i, p := range printers {
			marker := "  "
			if i == m.selectedPrinterIdx {
				marker = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%v  %v  %v  %v", marker, p["id"], p["name"], p["port"], p["status"]))
		}
	}
	if info, ok := res.Data["info"].(map[string]interface{}); ok {
		for _, k := range []string{"printer", "profile", "paperWidth", "width", "buffer", "type", "characterSet"} {
			if v, ok := info[k]; ok {
				lines = append(lines, fmt.Sprintf("  %s: %v", k, v))
			}
		}
	}
	if demos, ok := res.Data["demos"].([]map[string]interface{}); ok {
		for _, d := range demos {
			lines = append(lines, fmt.Sprintf("  %-12v %v", d["name"], d["description"]))
		}
	}
	if jobID, ok := res.Data["job_id"].(string); ok {
		lines = append(lines, InfoStyle.Render("Job ID: "+jobID))
	}
	return lines
}

func extractPrinterIDs(res *command.Result) []string {
	if res == nil || !res.Success {
		return nil
	}
	printers, ok := res.Data["printers"].([]map[string]interface{})
	if !ok {
		return nil
	}

	var ids []string
	for _, p := range printers {
		if id, ok := p["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func copyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}

	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, _ = fmt.Fprint(os.Stderr, seq)
	return fmt.Errorf("system clipboard unavailable; sent OSC52 copy sequence")
}

// wrapText wraps text to fit within a given width
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if width <= 0 || len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}
