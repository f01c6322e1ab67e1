package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thereceipt/receipt-demo/internal/demo"
)

// demoItem adapts a demo document to the bubbles list
type demoItem struct {
	doc demo.Document
}

func (i demoItem) Title() string       { return i.doc.Title }
func (i demoItem) Description() string { return i.doc.Description }
func (i demoItem) FilterValue() string { return i.doc.Name + " " + i.doc.Title }

// printRequest asks the app to run a command through the executor
type printRequest struct {
	command string
	label   string
}

// DemosModel handles the demos tab
type DemosModel struct {
	list      list.Model
	textInput textinput.Model
	editing   bool
	width     int
	height    int
}

// NewDemosModel creates the demo picker
func NewDemosModel() DemosModel {
	docs := demo.All()
	items := make([]list.Item, len(docs))
	for i, d := range docs {
		items[i] = demoItem{doc: d}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(Primary).BorderForeground(Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(Secondary).BorderForeground(Primary)

	l := list.New(items, delegate, 40, 20)
	l.Title = "Demo Documents"
	l.Styles.Title = HeaderStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "Text to print"
	input.CharLimit = 500
	input.Prompt = "> "
	input.PromptStyle = InputLabelFocusedStyle

	return DemosModel{list: l, textInput: input}
}

// SetSize sets the component size
func (m *DemosModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-4)
	m.textInput.Width = width - 6
}

// Editing reports whether the custom text input has focus
func (m DemosModel) Editing() bool {
	return m.editing || m.list.SettingFilter()
}

// Selected returns the highlighted document
func (m DemosModel) Selected() (demo.Document, bool) {
	item, ok := m.list.SelectedItem().(demoItem)
	if !ok {
		return demo.Document{}, false
	}
	return item.doc, true
}

// Update handles messages
func (m DemosModel) Update(msg tea.Msg) (DemosModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.editing {
			return m.updateEditing(key)
		}
		if !m.list.SettingFilter() {
			switch key.String() {
			case "enter":
				d, ok := m.Selected()
				if !ok {
					return m, nil
				}
				if d.Name == "text" {
					m.editing = true
					m.textInput.Focus()
					return m, textinput.Blink
				}
				return m, request("demo "+d.Name, d.Title)
			case "p":
				if d, ok := m.Selected(); ok {
					return m, request("preview "+d.Name+" "+d.Name+".png", d.Title+" preview")
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m DemosModel) updateEditing(key tea.KeyMsg) (DemosModel, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.editing = false
		m.textInput.Blur()
		m.textInput.Reset()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.textInput.Value())
		m.editing = false
		m.textInput.Blur()
		m.textInput.Reset()
		if text == "" {
			return m, nil
		}
		return m, request("text "+quote(text), "Custom Text")
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(key)
	return m, cmd
}

// View renders the demos tab
func (m DemosModel) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	if m.editing {
		b.WriteString(InputFocusedStyle.Width(m.width - 4).Render(m.textInput.View()))
		b.WriteString("\n")
		b.WriteString(RenderHelp("enter", "print") + "  " + RenderHelp("esc", "cancel"))
	} else {
		b.WriteString(RenderHelp("enter", "print") + "  " + RenderHelp("p", "preview PNG") + "  " + RenderHelp("/", "filter"))
	}
	return b.String()
}

func request(command, label string) tea.Cmd {
	return func() tea.Msg {
		return printRequest{command: command, label: label}
	}
}

// quote wraps s for the command parser, which has no escape sequences
func quote(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", "") + "'"
}
