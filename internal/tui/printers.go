package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thereceipt/receipt-demo/internal/printer"
)

// PrintersModel handles the printers tab
type PrintersModel struct {
	manager      *printer.Manager
	printers     []*printer.Printer
	cursor       int
	scrollOffset int
	width        int
	height       int

	renaming  bool
	nameInput textinput.Model
}

// NewPrintersModel creates a new printers model
func NewPrintersModel(manager *printer.Manager) PrintersModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "Kitchen Printer"
	nameInput.CharLimit = 64
	nameInput.Width = 30

	return PrintersModel{
		manager:   manager,
		printers:  manager.GetAllPrinters(),
		nameInput: nameInput,
	}
}

// SetSize sets the component size
func (m *PrintersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustScroll()
}

// SetPrinters replaces the printer list
func (m *PrintersModel) SetPrinters(printers []*printer.Printer) {
	m.printers = printers
	if m.cursor >= len(m.printers) && len(m.printers) > 0 {
		m.cursor = len(m.printers) - 1
	}
	m.adjustScroll()
}

// Renaming reports whether the name input has focus
func (m PrintersModel) Renaming() bool {
	return m.renaming
}

func (m PrintersModel) selected() *printer.Printer {
	if m.cursor < 0 || m.cursor >= len(m.printers) {
		return nil
	}
	return m.printers[m.cursor]
}

// Update handles messages
func (m PrintersModel) Update(msg tea.Msg) (PrintersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			// title and spacing take 3 lines
			idx := m.scrollOffset + msg.Y - 3
			if idx >= 0 && idx < len(m.printers) {
				m.cursor = idx
				m.adjustScroll()
			}
		}
	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case "down", "j":
			if m.cursor < len(m.printers)-1 {
				m.cursor++
				m.adjustScroll()
			}
		case "r":
			return m, detectCmd(m.manager)
		case "enter", "s":
			if p := m.selected(); p != nil {
				return m, request("printer select "+p.ID, "Select "+p.DisplayName())
			}
		case "d":
			if p := m.selected(); p != nil {
				return m, request("printer default "+p.ID, "Default "+p.DisplayName())
			}
		case "n":
			if p := m.selected(); p != nil {
				m.renaming = true
				m.nameInput.SetValue(p.Name)
				m.nameInput.Focus()
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m PrintersModel) updateRename(msg tea.KeyMsg) (PrintersModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.renaming = false
		m.nameInput.Blur()
		return m, nil
	case "enter":
		m.renaming = false
		m.nameInput.Blur()
		name := strings.TrimSpace(m.nameInput.Value())
		p := m.selected()
		if p == nil || name == "" {
			return m, nil
		}
		return m, request("printer name "+p.ID+" "+quote(name), "Rename")
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *PrintersModel) adjustScroll() {
	visible := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m PrintersModel) visibleRows() int {
	rows := m.height - 8
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the printers tab
func (m PrintersModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Printers"))
	b.WriteString("\n\n")

	if len(m.printers) == 0 {
		b.WriteString(TextMuted.Render("No printers detected.\n"))
		b.WriteString(TextMuted.Render("Connect a USB or serial printer and press r.\n"))
	} else {
		def := m.manager.Default()
		end := m.scrollOffset + m.visibleRows()
		if end > len(m.printers) {
			end = len(m.printers)
		}
		for i := m.scrollOffset; i < end; i++ {
			p := m.printers[i]
			marker := " "
			if p.ID == def {
				marker = "*"
			}
			line := fmt.Sprintf("%s %s %s  %s  %s", StatusIcon(p.Status), marker,
				Truncate(p.DisplayName(), 28), TextMuted.Render(p.Port), TextMuted.Render(p.Status))
			if i == m.cursor {
				b.WriteString(SelectedItemStyle.Render(line))
			} else {
				b.WriteString(ListItemStyle.Render(line))
			}
			b.WriteString("\n")
		}

		if p := m.selected(); p != nil {
			b.WriteString("\n")
			b.WriteString(TextMuted.Render(fmt.Sprintf("ID %s  driver %s  type %s", p.ID, p.Driver, p.Type)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.renaming {
		b.WriteString(InputLabelFocusedStyle.Render("Name"))
		b.WriteString("\n")
		b.WriteString(InputFocusedStyle.Render(m.nameInput.View()))
		b.WriteString("\n")
		b.WriteString(RenderHelp("enter", "save") + "  " + RenderHelp("esc", "cancel"))
	} else {
		b.WriteString(RenderHelp("enter", "select") + "  " + RenderHelp("d", "default") + "  " +
			RenderHelp("n", "rename") + "  " + RenderHelp("r", "rescan"))
	}

	return b.String()
}

// detectCmd rescans printers off the UI goroutine
func detectCmd(manager *printer.Manager) tea.Cmd {
	return func() tea.Msg {
		printers, err := manager.DetectPrinters()
		return printerUpdateMsg{printers: printers, err: err}
	}
}
