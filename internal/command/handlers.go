package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/thereceipt/receipt-demo/internal/demo"
	"github.com/thereceipt/receipt-demo/internal/escpos"
	"github.com/thereceipt/receipt-demo/internal/parser"
	"github.com/thereceipt/receipt-demo/internal/preview"
	"github.com/thereceipt/receipt-demo/internal/printer"
	"github.com/thereceipt/receipt-demo/pkg/receiptformat"
)

// DryRunPrinterID identifies jobs written to the in-memory sink
const DryRunPrinterID = "dry-run"

// builder fills a session for the profile of the target printer
type builder func(profile escpos.Profile) (*escpos.Session, error)

// target resolves the selected printer and its open transport
func (e *Executor) target() (string, printer.Transport, escpos.Profile, error) {
	if e.dryRun != nil {
		return DryRunPrinterID, e.dryRun, e.opts.Profile, nil
	}

	e.mu.Lock()
	selector := e.selector
	e.mu.Unlock()

	p, err := e.manager.Resolve(selector)
	if err != nil {
		return "", nil, escpos.Profile{}, err
	}
	t, err := e.pool.Get(p)
	if err != nil {
		return "", nil, escpos.Profile{}, err
	}
	return p.ID, t, e.profileFor(p), nil
}

// profileFor prefers the profile stored for a printer in the registry
func (e *Executor) profileFor(p *printer.Printer) escpos.Profile {
	if p.Profile == "" {
		return e.opts.Profile
	}
	profile, err := escpos.LookupProfile(p.Profile)
	if err != nil {
		e.logger.Warn("Ignoring unknown printer profile", zap.String("id", p.ID), zap.String("profile", p.Profile))
		return e.opts.Profile
	}
	return profile
}

// run builds a document and sends it to the selected printer
func (e *Executor) run(ctx context.Context, document, title string, build builder) *Result {
	printerID, t, profile, err := e.target()
	if err != nil {
		return failure("%s failed: %v", title, err)
	}

	s, err := build(profile)
	if err != nil {
		return failure("%s failed: %v", title, err)
	}

	e.mu.Lock()
	e.lastLen = s.Len()
	e.mu.Unlock()

	result, err := e.engine.Execute(ctx, t, s)
	job := e.history.Record(printerID, document, result, err)
	if err != nil {
		if !e.opts.DryRun {
			// the handle may be dead; reconnect on the next job
			_ = e.pool.Disconnect(printerID)
		}
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("%s failed: %v", title, err),
			Data:    map[string]interface{}{"job_id": job.ID, "bytes_written": job.BytesWritten},
		}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("%s printed successfully!", title),
		Data: map[string]interface{}{
			"job_id":        result.JobID,
			"printer_id":    printerID,
			"bytes_written": result.BytesWritten,
			"chunks":        result.Chunks,
			"reset":         result.Reset,
		},
	}
}

func (e *Executor) demoBuilder(d demo.Document, env demo.Env) builder {
	return func(profile escpos.Profile) (*escpos.Session, error) {
		s := escpos.NewSession(profile)
		if err := d.Build(s, env); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// handleDemo prints one of the built-in documents
// Usage: demo [list] | demo <name> | demo text <text...>
func (e *Executor) handleDemo(ctx context.Context, args []string) *Result {
	if len(args) == 0 || args[0] == "list" {
		docs := demo.All()
		list := make([]map[string]interface{}, len(docs))
		for i, d := range docs {
			list[i] = map[string]interface{}{
				"name":        d.Name,
				"title":       d.Title,
				"description": d.Description,
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("%d demo document(s)", len(docs)),
			Data:    map[string]interface{}{"demos": list},
		}
	}

	d, ok := demo.Lookup(args[0])
	if !ok {
		return failure("unknown demo: %s. Use one of: %s", args[0], strings.Join(demo.Names(), ", "))
	}

	env := e.opts.Env
	env.Dither = env.Dither || e.opts.Dither
	if d.Name == "text" {
		if len(args) < 2 {
			return failure("usage: text <text...>")
		}
		env.Text = strings.Join(args[1:], " ")
	}

	res := e.run(ctx, "demo:"+d.Name, d.Title, e.demoBuilder(d, env))
	if res.Success && d.Name == "drawer" {
		res.Message = "Cash drawer opened!"
	}
	return res
}

type templateData struct {
	Variables map[string]interface{}              `json:"variables"`
	Arrays    map[string][]map[string]interface{} `json:"arrays"`
}

// receiptBuilder compiles a .receipt file with optional data
func (e *Executor) receiptBuilder(path string, args []string) (builder, error) {
	receipt, err := receiptformat.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	data := templateData{
		Variables: make(map[string]interface{}),
		Arrays:    make(map[string][]map[string]interface{}),
	}
	dither := e.opts.Dither

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--var":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--var needs key=value")
			}
			i++
			kv := strings.SplitN(args[i], "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid variable %q (expected key=value)", args[i])
			}
			data.Variables[kv[0]] = kv[1]
		case "--data":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--data needs a JSON file")
			}
			i++
			raw, err := os.ReadFile(args[i])
			if err != nil {
				return nil, fmt.Errorf("failed to read data file: %w", err)
			}
			var fileData templateData
			if err := json.Unmarshal(raw, &fileData); err != nil {
				return nil, fmt.Errorf("failed to parse data file: %w", err)
			}
			for k, v := range fileData.Variables {
				data.Variables[k] = v
			}
			for k, v := range fileData.Arrays {
				data.Arrays[k] = v
			}
		case "--dither":
			dither = true
		default:
			return nil, fmt.Errorf("unknown option: %s", args[i])
		}
	}

	return func(profile escpos.Profile) (*escpos.Session, error) {
		p, err := parser.New(receipt, profile)
		if err != nil {
			return nil, err
		}
		p.SetVariableData(data.Variables)
		p.SetVariableArrayData(data.Arrays)
		p.SetDither(dither)
		return p.Execute()
	}, nil
}

// handlePrint prints a receipt template
// Usage: print <receipt-path> [--var key=value]... [--data file.json] [--dither]
func (e *Executor) handlePrint(ctx context.Context, args []string) *Result {
	if len(args) < 1 {
		return failure("usage: print <receipt-path> [--var key=value]... [--data file.json] [--dither]")
	}

	build, err := e.receiptBuilder(args[0], args[1:])
	if err != nil {
		return failure("%v", err)
	}
	return e.run(ctx, args[0], "Receipt", build)
}

// handlePreview renders a demo or receipt file to PNG without printing
// Usage: preview <demo-name|receipt-path> [output.png]
func (e *Executor) handlePreview(args []string) *Result {
	if len(args) < 1 {
		return failure("usage: preview <demo-name|receipt-path> [output.png]")
	}

	var build builder
	if d, ok := demo.Lookup(args[0]); ok {
		env := e.opts.Env
		if d.Name == "text" && env.Text == "" {
			env.Text = "Custom text preview"
		}
		build = e.demoBuilder(d, env)
	} else {
		b, err := e.receiptBuilder(args[0], nil)
		if err != nil {
			return failure("%v", err)
		}
		build = b
	}

	out := "preview.png"
	if len(args) > 1 {
		out = args[1]
	}

	s, err := build(e.opts.Profile)
	if err != nil {
		return failure("failed to build document: %v", err)
	}
	img, err := preview.RenderSession(s, e.opts.Preview)
	if err != nil {
		return failure("failed to render preview: %v", err)
	}
	if err := preview.SavePNG(img, out); err != nil {
		return failure("failed to save preview: %v", err)
	}

	b := img.Bounds()
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Preview saved to %s", out),
		Data: map[string]interface{}{
			"path":   out,
			"width":  b.Dx(),
			"height": b.Dy(),
			"bytes":  s.Len(),
		},
	}
}

// handlePrinter handles printer commands
// Usage: printer list | select <id|name|auto> | name <id> <name> | default <id>
func (e *Executor) handlePrinter(args []string) *Result {
	if len(args) == 0 {
		return failure("usage: printer <list|select|name|default>")
	}

	subcommand := args[0]

	switch subcommand {
	case "list":
		printers := e.manager.GetAllPrinters()
		def := e.manager.Default()
		printerList := make([]map[string]interface{}, len(printers))
		for i, p := range printers {
			printerList[i] = map[string]interface{}{
				"id":          p.ID,
				"type":        p.Type,
				"name":        p.DisplayName(),
				"description": p.Description,
				"driver":      p.Driver,
				"port":        p.Port,
				"status":      p.Status,
				"default":     p.ID == def,
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d printer(s)", len(printers)),
			Data: map[string]interface{}{
				"printers": printerList,
			},
		}

	case "select":
		if len(args) < 2 {
			return failure("usage: printer select <id|name|auto>")
		}
		selector := args[1]
		p, err := e.manager.Resolve(selector)
		if err != nil {
			return failure("%v", err)
		}
		e.mu.Lock()
		e.selector = selector
		e.mu.Unlock()
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Selected printer: %s", p.DisplayName()),
			Data:    map[string]interface{}{"printer_id": p.ID},
		}

	case "name":
		if len(args) < 3 {
			return failure("usage: printer name <id> <name>")
		}
		printerID := args[1]
		name := strings.Join(args[2:], " ")
		if !e.manager.SetPrinterName(printerID, name) {
			return failure("printer not found: %s", printerID)
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Renamed printer %s to %s", printerID, name),
		}

	case "default":
		if len(args) < 2 {
			return failure("usage: printer default <id>")
		}
		if !e.manager.SetDefault(args[1]) {
			return failure("printer not found: %s", args[1])
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Default printer set to %s", args[1]),
		}

	default:
		return failure("unknown printer subcommand: %s. Use: list, select, name, default", subcommand)
	}
}

// handleDetect scans for printers
// Usage: detect
func (e *Executor) handleDetect(args []string) *Result {
	printers, err := e.manager.DetectPrinters()
	if err != nil {
		return failure("detection failed: %v", err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Detected %d printer(s)", len(printers)),
		Data: map[string]interface{}{
			"count": len(printers),
		},
	}
}

// handleJob handles job commands
// Usage: job list | status <id> | clear
func (e *Executor) handleJob(args []string) *Result {
	if len(args) == 0 {
		return failure("usage: job <list|status|clear>")
	}

	switch args[0] {
	case "list":
		jobs := e.history.GetAllJobs()
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d job(s)", len(jobs)),
			Data: map[string]interface{}{
				"jobs": jobs,
			},
		}

	case "status":
		if len(args) < 2 {
			return failure("usage: job status <id>")
		}
		job := e.history.GetJob(args[1])
		if job == nil {
			return failure("job not found: %s", args[1])
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Job %s %s", job.ID, job.Status),
			Data:    map[string]interface{}{"job": job},
		}

	case "clear":
		e.history.ClearCompleted()
		return &Result{
			Success: true,
			Message: "Cleared completed jobs",
		}

	default:
		return failure("unknown job subcommand: %s. Use: list, status, clear", args[0])
	}
}

// handleInfo reports the active printer configuration
// Usage: info
func (e *Executor) handleInfo(args []string) *Result {
	e.mu.Lock()
	selector, lastLen := e.selector, e.lastLen
	e.mu.Unlock()

	profile := e.opts.Profile
	data := map[string]interface{}{
		"width":        profile.PrintWidth,
		"buffer":       lastLen,
		"type":         "EPSON",
		"characterSet": profile.Charset,
		"profile":      profile.Name,
		"paperWidth":   profile.PaperWidth,
	}

	if e.opts.DryRun {
		data["printer"] = DryRunPrinterID
	} else if p, err := e.manager.Resolve(selector); err == nil {
		profile = e.profileFor(p)
		data["printer"] = p.DisplayName()
		data["width"] = profile.PrintWidth
		data["characterSet"] = profile.Charset
		data["profile"] = profile.Name
		data["paperWidth"] = profile.PaperWidth
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("%s, %d characters per line, %s", data["type"], data["width"], data["characterSet"]),
		Data:    map[string]interface{}{"info": data},
	}
}

// handleHelp handles help command
func (e *Executor) handleHelp(args []string) *Result {
	helpText := `Available Commands:

  demo [list]
    List the built-in demo documents

  demo <name>
    Print a demo document (receipt, connection, barcode, table, image,
    partial-cut, full-cut, cut-compare, drawer)

  text <text...>
    Print custom text with a header and timestamp

  print <receipt-path> [--var key=value]... [--data file.json] [--dither]
    Compile a .receipt template and print it

  preview <demo-name|receipt-path> [output.png]
    Render a document to PNG without printing

  drawer
    Open the cash drawer

  printer list
    List detected printers

  printer select <id|name|auto>
    Choose the printer used for printing

  printer name <id> <name>
    Set a custom name for a printer

  printer default <id>
    Make a printer the auto-detect choice

  detect
    Scan for printers

  job list | job status <id> | job clear
    Inspect finished print jobs

  info
    Show line width, buffer size, printer type and character set

  help
    Show this help message

Examples:
  demo receipt
  text "Table 4 ready"
  print ./order.receipt --var customer="Jane Doe"
  preview barcode barcode.png
  printer name 3f2a... "Kitchen Printer"
`

	return &Result{
		Success: true,
		Message: helpText,
	}
}
