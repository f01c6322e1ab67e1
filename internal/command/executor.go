// Package command provides the text command system of the receipt demo
package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/thereceipt/receipt-demo/internal/demo"
	"github.com/thereceipt/receipt-demo/internal/escpos"
	"github.com/thereceipt/receipt-demo/internal/preview"
	"github.com/thereceipt/receipt-demo/internal/printer"
)

// Options configures an Executor
type Options struct {
	Profile  escpos.Profile
	Selector string // printer ID, name or "auto"
	Baud     int
	DryRun   bool // write to memory instead of a device
	Env      demo.Env
	Preview  preview.Options
	Dither   bool
}

// Executor executes commands
type Executor struct {
	manager *printer.Manager
	pool    *printer.ConnectionPool
	engine  *printer.Engine
	history *printer.History
	logger  *zap.Logger
	opts    Options

	mu       sync.Mutex
	selector string
	dryRun   *printer.MemoryTransport
	lastLen  int
}

// NewExecutor creates a new command executor
func NewExecutor(manager *printer.Manager, engine *printer.Engine, logger *zap.Logger, opts Options) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Profile.PrintWidth == 0 {
		opts.Profile = escpos.DefaultProfile()
	}
	e := &Executor{
		manager:  manager,
		engine:   engine,
		history:  printer.NewHistory(0),
		logger:   logger.With(zap.String("component", "executor")),
		opts:     opts,
		selector: opts.Selector,
	}
	e.pool = printer.NewConnectionPool(func(p *printer.Printer) (printer.Transport, error) {
		return manager.Open(p, opts.Baud)
	}, engine, logger)
	if opts.DryRun {
		e.dryRun = printer.NewMemoryTransport("dry-run")
	}
	return e
}

// Result represents the result of executing a command
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func failure(format string, args ...interface{}) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Execute executes a command string and returns a result
func (e *Executor) Execute(ctx context.Context, cmdStr string) *Result {
	parts := parseCommand(cmdStr)
	if len(parts) == 0 {
		return failure("empty command")
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "demo":
		return e.handleDemo(ctx, args)
	case "text":
		return e.handleDemo(ctx, append([]string{"text"}, args...))
	case "print":
		return e.handlePrint(ctx, args)
	case "drawer":
		return e.handleDemo(ctx, []string{"drawer"})
	case "preview":
		return e.handlePreview(args)
	case "printer":
		return e.handlePrinter(args)
	case "detect":
		return e.handleDetect(args)
	case "job":
		return e.handleJob(args)
	case "info":
		return e.handleInfo(args)
	case "help":
		return e.handleHelp(args)
	default:
		return failure("unknown command: %s. Type 'help' for available commands", command)
	}
}

// Close releases every open printer connection
func (e *Executor) Close() {
	e.pool.DisconnectAll()
}

// History returns the jobs executed so far
func (e *Executor) History() *printer.History {
	return e.history
}

// DryRunOutput returns the bytes collected in dry-run mode
func (e *Executor) DryRunOutput() []byte {
	if e.dryRun == nil {
		return nil
	}
	return e.dryRun.Bytes()
}

// parseCommand parses a command string into parts, handling quoted strings
func parseCommand(cmdStr string) []string {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return []string{}
	}

	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i := 0; i < len(cmdStr); i++ {
		char := cmdStr[i]

		if char == '"' || char == '\'' {
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else {
				current.WriteByte(char)
			}
		} else if char == ' ' && !inQuotes {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(char)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
