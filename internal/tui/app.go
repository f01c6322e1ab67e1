// Package tui is the interactive console for picking printers and demos
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thereceipt/receipt-demo/internal/command"
	"github.com/thereceipt/receipt-demo/internal/printer"
)

// Tab represents a navigation tab
type Tab int

const (
	TabDemos Tab = iota
	TabPrinters
	TabJobs
)

var tabs = []Tab{TabDemos, TabPrinters, TabJobs}

func (t Tab) String() string {
	return []string{"Demos", "Printers", "Jobs"}[t]
}

const sidebarWidth = 24

// Messages
type tickMsg time.Time

type printerUpdateMsg struct {
	printers []*printer.Printer
	err      error
}

type resultMsg struct {
	label  string
	result *command.Result
}

type logEntry struct {
	time    time.Time
	message string
	level   string
}

// App is the main Bubble Tea model
type App struct {
	ctx      context.Context
	executor *command.Executor
	manager  *printer.Manager

	activeTab Tab
	width     int
	height    int
	ready     bool
	quitting  bool
	busy      string

	logs    []logEntry
	maxLogs int

	spinner  spinner.Model
	demos    DemosModel
	printers PrintersModel
	jobs     JobsModel
	command  CommandModel

	startTime time.Time
}

// NewApp creates a new Bubble Tea TUI application
func NewApp(ctx context.Context, executor *command.Executor, manager *printer.Manager) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &App{
		ctx:       ctx,
		executor:  executor,
		manager:   manager,
		activeTab: TabDemos,
		maxLogs:   100,
		spinner:   s,
		demos:     NewDemosModel(),
		printers:  NewPrintersModel(manager),
		jobs:      NewJobsModel(executor.History()),
		command:   NewCommandModel(),
		startTime: time.Now(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.tickCmd(), detectCmd(a.manager))
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// execute runs a command off the UI goroutine
func (a *App) execute(req printRequest) tea.Cmd {
	ctx, exec := a.ctx, a.executor
	return func() tea.Msg {
		return resultMsg{label: req.label, result: exec.Execute(ctx, req.command)}
	}
}

func (a *App) inputFocused() bool {
	return a.demos.Editing() || a.printers.Renaming()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.command.IsVisible() {
			var cmd tea.Cmd
			a.command, cmd = a.command.Update(msg)
			return a, cmd
		}

		if msg.String() == "ctrl+c" {
			a.quitting = true
			return a, tea.Quit
		}

		if !a.inputFocused() {
			switch msg.String() {
			case ":":
				a.command.Show()
				a.command.SetSize(a.width)
				a.command.SetHeight(a.bottomAreaHeight())
				return a, nil
			case "q":
				a.quitting = true
				return a, tea.Quit
			case "1", "2", "3":
				a.activeTab = Tab(msg.String()[0] - '1')
				return a, nil
			case "tab":
				a.activeTab = (a.activeTab + 1) % Tab(len(tabs))
				return a, nil
			case "shift+tab":
				a.activeTab = (a.activeTab + Tab(len(tabs)) - 1) % Tab(len(tabs))
				return a, nil
			}
		}

		cmds = append(cmds, a.updateActive(msg))

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()

	case printRequest:
		if a.busy != "" {
			a.addLog("Busy with "+a.busy, "warning")
			break
		}
		a.busy = msg.label
		cmds = append(cmds, a.execute(msg))

	case resultMsg:
		a.busy = ""
		if msg.result.Success {
			a.addLog(firstLine(msg.result.Message), "success")
		} else {
			a.addLog(msg.result.Error, "error")
		}
		if a.command.IsVisible() {
			a.command.SetResult(msg.result)
		}
		a.jobs.Refresh()
		a.printers.SetPrinters(a.manager.GetAllPrinters())

	case tickMsg:
		a.jobs.Refresh()
		cmds = append(cmds, a.tickCmd())

	case printerUpdateMsg:
		if msg.err != nil {
			a.addLog("Printer detection failed: "+msg.err.Error(), "error")
		} else {
			a.printers.SetPrinters(msg.printers)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		if msg.Y >= a.height-a.bottomAreaHeight() {
			return a, nil
		}
		translated := msg
		translated.X = max(0, msg.X-sidebarWidth-2)
		translated.Y = max(0, msg.Y-1)
		cmds = append(cmds, a.updateActive(translated))

	default:
		// blink and filter messages for the focused component
		if a.command.IsVisible() {
			var cmd tea.Cmd
			a.command, cmd = a.command.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, a.updateActive(msg))
	}

	return a, tea.Batch(cmds...)
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.activeTab {
	case TabDemos:
		a.demos, cmd = a.demos.Update(msg)
	case TabPrinters:
		a.printers, cmd = a.printers.Update(msg)
	case TabJobs:
		a.jobs, cmd = a.jobs.Update(msg)
	}
	return cmd
}

func (a *App) contentSize() (int, int) {
	w := max(20, a.width-sidebarWidth-1)
	h := max(1, a.height-a.bottomAreaHeight())
	return w, h
}

func (a *App) resize() {
	w, h := a.contentSize()
	// ContentStyle padding
	a.demos.SetSize(w-4, h-2)
	a.printers.SetSize(w-4, h-2)
	a.jobs.SetSize(w-4, h-2)
	a.command.SetSize(a.width)
	a.command.SetHeight(a.bottomAreaHeight())
}

// View renders the UI
func (a *App) View() string {
	if a.quitting {
		return "\n  Goodbye!\n\n"
	}
	if !a.ready {
		return "\n  Loading...\n"
	}

	a.resize()
	w, h := a.contentSize()
	top := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(h), a.renderContent(w, h))

	bottom := a.renderStatusBar()
	if a.command.IsVisible() {
		bottom = a.renderCommandArea()
	}

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left, top, bottom), "\n")
	for len(lines) < a.height {
		lines = append(lines, strings.Repeat(" ", a.width))
	}
	if len(lines) > a.height {
		lines = lines[:a.height]
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderSidebar(height int) string {
	var lines []string

	lines = append(lines, LogoStyle.Render("Receipt Demo"))
	if a.busy != "" {
		lines = append(lines, a.spinner.View()+TextMuted.Render(" "+Truncate(a.busy, sidebarWidth-6)))
	} else {
		lines = append(lines, TextMuted.Render("idle"))
	}
	lines = append(lines, "", TextMuted.Render(" NAVIGATION"), "")

	for i, t := range tabs {
		item := fmt.Sprintf(" %d %s", i+1, t)
		if pad := sidebarWidth - lipgloss.Width(item) - 2; pad > 0 {
			item += strings.Repeat(" ", pad)
		}
		if t == a.activeTab {
			lines = append(lines, SidebarActiveStyle.Render(item))
		} else {
			lines = append(lines, SidebarItemStyle.Render(item))
		}
	}

	lines = append(lines, "", TextMuted.Render(" : command  q quit"))

	return SidebarStyle.
		Width(sidebarWidth).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

func (a *App) renderContent(width, height int) string {
	var content string
	switch a.activeTab {
	case TabDemos:
		content = a.demos.View()
	case TabPrinters:
		content = a.printers.View()
	case TabJobs:
		content = a.jobs.View()
	}

	lines := strings.Split(content, "\n")
	if len(lines) > height {
		content = strings.Join(lines[:height], "\n")
	}

	return ContentStyle.
		Width(width).
		Height(height).
		Render(content)
}

func (a *App) renderStatusBar() string {
	base := lipgloss.NewStyle().Background(BgCard).Foreground(colorTextNormal)

	seg := func(text string, fg, bg lipgloss.Color, bold bool) string {
		return lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1).Bold(bold).Render(text)
	}
	pipe := base.Render(" | ")

	mode := seg("NAV", colorTextBright, BgHover, true)
	printers := seg(fmt.Sprintf("printers %d", len(a.printers.printers)), colorTextBright, Secondary, true)
	jobs := seg(fmt.Sprintf("jobs %d", len(a.jobs.jobs)), colorTextBright, BgHover, false)

	msgText, msgFg, msgBg := "ready", colorTextNormal, BgCard
	if len(a.logs) > 0 {
		last := a.logs[len(a.logs)-1]
		msgText, msgFg = last.message, colorTextBright
		switch last.level {
		case "error":
			msgBg = Error
		case "warning":
			msgBg = Warning
		case "success":
			msgBg = Success
		default:
			msgBg = BgConsole
		}
	}

	uptime := time.Since(a.startTime)
	up := seg(fmt.Sprintf("up %02d:%02d", int(uptime.Hours()), int(uptime.Minutes())%60), colorTextBright, Primary, true)

	left := mode + pipe + printers + pipe + jobs + pipe
	remaining := max(10, a.width-lipgloss.Width(left)-lipgloss.Width(pipe)-lipgloss.Width(up))
	left += seg(Truncate(msgText, remaining), msgFg, msgBg, false)

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(pipe)-lipgloss.Width(up))
	return base.Width(a.width).Render(left + strings.Repeat(" ", gap) + pipe + up)
}

func (a *App) renderCommandArea() string {
	base := lipgloss.NewStyle().Background(BgCard).Foreground(colorTextNormal)
	h := a.bottomAreaHeight()

	lines := strings.Split(a.command.View(), "\n")
	if len(lines) > h {
		lines = lines[len(lines)-h:]
	}
	return base.Width(a.width).Height(h).Render(strings.Join(lines, "\n"))
}

func (a *App) bottomAreaHeight() int {
	if a.command.IsVisible() {
		return min(10, max(5, a.height/3))
	}
	return 1
}

func (a *App) addLog(message, level string) {
	a.logs = append(a.logs, logEntry{time: time.Now(), message: message, level: level})
	if len(a.logs) > a.maxLogs {
		a.logs = a.logs[1:]
	}
}

// Run starts the TUI
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
