package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thereceipt/receipt-demo/internal/printer"
)

// JobsModel handles the jobs tab
type JobsModel struct {
	history      *printer.History
	jobs         []*printer.Job
	cursor       int
	scrollOffset int
	width        int
	height       int
	message      string
}

// NewJobsModel creates a new jobs model
func NewJobsModel(history *printer.History) JobsModel {
	return JobsModel{history: history}
}

// SetSize sets the component size
func (m *JobsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustScroll()
}

// Refresh reloads the job list, newest first
func (m *JobsModel) Refresh() {
	jobs := m.history.GetAllJobs()
	for i, j := 0, len(jobs)-1; i < j; i, j = i+1, j-1 {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}
	m.jobs = jobs
	if m.cursor >= len(m.jobs) {
		m.cursor = len(m.jobs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

// Update handles messages
func (m JobsModel) Update(msg tea.Msg) (JobsModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case "down", "j":
			if m.cursor < len(m.jobs)-1 {
				m.cursor++
				m.adjustScroll()
			}
		case "c":
			m.history.ClearCompleted()
			m.Refresh()
			m.message = "Cleared completed jobs"
		}
	}
	return m, nil
}

func (m *JobsModel) adjustScroll() {
	visible := m.height - 8
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

// View renders the jobs tab
func (m JobsModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Print Jobs"))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString(TextMuted.Render("No jobs yet.\n"))
		b.WriteString(TextMuted.Render("Print a demo from the Demos tab.\n"))
	} else {
		for i := m.scrollOffset; i < len(m.jobs); i++ {
			j := m.jobs[i]
			line := fmt.Sprintf("%s %s  %-14s %6d bytes  %s",
				StatusIcon(j.Status), j.CreatedAt.Format("15:04:05"), Truncate(j.Document, 14),
				j.BytesWritten, j.Duration.Round(time.Millisecond))
			if i == m.cursor {
				b.WriteString(SelectedItemStyle.Render(line))
			} else {
				b.WriteString(ListItemStyle.Render(line))
			}
			b.WriteString("\n")
			if j.Error != "" && i == m.cursor {
				b.WriteString(ErrorStyle.Render("    " + j.Error))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(SuccessStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(RenderHelp("c", "clear completed"))
	return b.String()
}
