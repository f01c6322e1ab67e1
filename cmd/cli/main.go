package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/thereceipt/receipt-demo/internal/command"
	"github.com/thereceipt/receipt-demo/internal/config"
	"github.com/thereceipt/receipt-demo/internal/demo"
	"github.com/thereceipt/receipt-demo/internal/logging"
	"github.com/thereceipt/receipt-demo/internal/preview"
	"github.com/thereceipt/receipt-demo/internal/printer"
	"github.com/thereceipt/receipt-demo/internal/registry"
	"github.com/thereceipt/receipt-demo/internal/tui"
)

// Version is set during build via ldflags
var Version = "dev"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0EA5E9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#78716C"))
)

type options struct {
	configPath  string
	selector    string
	dryRun      bool
	dryRunOut   string
	interactive bool
	watch       bool
	text        string
	image       string
	version     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Config file (default: ./receipt-demo.yaml)")
	flag.StringVar(&opts.selector, "printer", "", "Printer ID or name (default: registry default, then first detected)")
	flag.StringVar(&opts.selector, "p", "", "Printer ID or name (short)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Build jobs in memory instead of printing")
	flag.StringVar(&opts.dryRunOut, "out", "", "With -dry-run, write the ESC/POS bytes to this file")
	flag.BoolVar(&opts.interactive, "tui", false, "Start the interactive console")
	flag.BoolVar(&opts.watch, "watch", false, "Log printers as they are plugged in and removed")
	flag.StringVar(&opts.text, "text", "", "Body of the custom text demo")
	flag.StringVar(&opts.image, "image", demo.DefaultImagePath, "Image printed by the image demo")
	flag.BoolVar(&opts.version, "version", false, "Print version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if opts.version {
		fmt.Println("receipt-cli", Version)
		return
	}

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	if !opts.interactive && !opts.watch && len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	// the console owns the terminal, so keep log lines out of it
	if opts.interactive && cfg.Logging.Output == "stderr" {
		cfg.Logging.Output = "file"
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	profile, err := cfg.Profile()
	if err != nil {
		return err
	}

	reg, err := registry.New(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("failed to open printer registry: %w", err)
	}

	manager := printer.NewManager(reg, logger)
	if _, err := manager.DetectPrinters(); err != nil {
		logger.Warn("Printer detection failed", zap.Error(err))
	}
	selector := opts.selector
	if selector == "" {
		selector = cfg.Printer.ID
	}
	if p := addConfigured(manager, &cfg.Printer); p != nil && selector == "" {
		selector = p.ID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.watch {
		monitor := printer.NewMonitor(manager, 0, logger)
		monitor.OnAdded = func(p *printer.Printer) {
			fmt.Println(successStyle.Render("+ ") + p.DisplayName() + " " + mutedStyle.Render(p.Port))
		}
		monitor.OnRemoved = func(p *printer.Printer) {
			fmt.Println(errorStyle.Render("- ") + p.DisplayName() + " " + mutedStyle.Render(p.Port))
		}
		logger.Info("Watching for printers", zap.String("version", Version))
		monitor.Run(ctx)
		return nil
	}

	engine := printer.NewEngine(printer.EngineConfig{
		Timeout:   cfg.Engine.Timeout,
		ChunkSize: cfg.Engine.ChunkSize,
	}, logger)

	executor := command.NewExecutor(manager, engine, logger, command.Options{
		Profile:  profile,
		Selector: selector,
		Baud:     cfg.Printer.Baud,
		DryRun:   opts.dryRun || cfg.Printer.Transport == "memory",
		Env: demo.Env{
			Text:      opts.text,
			ImagePath: opts.image,
		},
		Preview: preview.Options{
			Margin:   cfg.Preview.Margin,
			FontSize: cfg.Preview.FontSize,
		},
	})
	defer executor.Close()

	if opts.interactive {
		return tui.NewApp(ctx, executor, manager).Run()
	}

	cmdStr, cleanup, err := commandLine(args)
	if err != nil {
		return err
	}
	defer cleanup()

	result := executor.Execute(ctx, cmdStr)
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	printResult(result)

	if opts.dryRunOut != "" {
		if err := os.WriteFile(opts.dryRunOut, executor.DryRunOutput(), 0644); err != nil {
			return fmt.Errorf("failed to write dry-run output: %w", err)
		}
		fmt.Println(mutedStyle.Render("ESC/POS bytes written to " + opts.dryRunOut))
	}
	return nil
}

// addConfigured registers the printer described in the config file, if any
func addConfigured(manager *printer.Manager, cfg *config.PrinterConfig) *printer.Printer {
	info := registry.PrinterInfo{Device: cfg.Device, VID: cfg.VID, PID: cfg.PID}
	switch cfg.Transport {
	case "serial":
		info.Type = printer.TypeSerial
		info.Description = "Serial printer " + cfg.Device
	case "device":
		info.Type = printer.TypeDevice
		info.Description = "Printer device " + cfg.Device
	case "usb":
		if cfg.VID == 0 {
			return nil
		}
		info.Type = printer.TypeUSB
		info.Description = fmt.Sprintf("USB printer %04x:%04x", cfg.VID, cfg.PID)
	default:
		return nil
	}
	if info.Type != printer.TypeUSB && cfg.Device == "" {
		return nil
	}
	return manager.AddPrinter(info)
}

// commandLine joins the arguments into one executor command, turning
// `print --compose ...` into a temporary receipt file
func commandLine(args []string) (string, func(), error) {
	noop := func() {}
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}

	if len(args) < 2 || args[0] != "print" || args[1] != "--compose" {
		return strings.Join(quoted, " "), noop, nil
	}

	receipt, err := composeReceipt(args[2:])
	if err != nil {
		return "", noop, fmt.Errorf("error composing receipt: %w", err)
	}
	path, err := writeComposed(receipt)
	if err != nil {
		return "", noop, err
	}
	return "print " + quoteArg(path), func() { os.Remove(path) }, nil
}

// quoteArg re-quotes arguments the shell already split on whitespace
func quoteArg(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t") {
		return a
	}
	if strings.Contains(a, `"`) {
		return "'" + a + "'"
	}
	return `"` + a + `"`
}

func printResult(result *command.Result) {
	if result.Message != "" {
		fmt.Println(successStyle.Render(result.Message))
	}
	if result.Data == nil {
		return
	}

	if printers, ok := result.Data["printers"].([]map[string]interface{}); ok {
		for _, p := range printers {
			marker := " "
			if def, _ := p["default"].(bool); def {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s\n", marker, keyStyle.Render(fmt.Sprint(p["id"])), p["name"],
				mutedStyle.Render(fmt.Sprintf("%s, %s, %s", p["driver"], p["port"], p["status"])))
		}
	}

	if demos, ok := result.Data["demos"].([]map[string]interface{}); ok {
		for _, d := range demos {
			fmt.Printf("  %-12s %s\n", keyStyle.Render(fmt.Sprint(d["name"])), mutedStyle.Render(fmt.Sprint(d["description"])))
		}
	}

	if jobs, ok := result.Data["jobs"].([]*printer.Job); ok {
		for _, j := range jobs {
			line := fmt.Sprintf("  %s  %-9s %s  %s", keyStyle.Render(j.ID), j.Status, j.PrinterID, j.Document)
			if j.Error != "" {
				line += "  " + errorStyle.Render(j.Error)
			}
			fmt.Println(line)
		}
	}

	if info, ok := result.Data["info"].(map[string]interface{}); ok {
		for _, k := range []string{"printer", "type", "profile", "width", "paperWidth", "characterSet", "buffer"} {
			if v, ok := info[k]; ok {
				fmt.Printf("  %-13s %v\n", keyStyle.Render(k), v)
			}
		}
	}

	if jobID, ok := result.Data["job_id"].(string); ok {
		fmt.Println(mutedStyle.Render("Job ID: " + jobID))
	}
	if path, ok := result.Data["path"].(string); ok {
		fmt.Println(mutedStyle.Render("Preview: " + path))
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Receipt Demo CLI

Usage:
  receipt-cli [flags] <command>
  receipt-cli -tui
  receipt-cli -watch

Flags:
  -config <file>     Config file (default: ./receipt-demo.yaml)
  -p, -printer <id>  Printer ID or name
  -dry-run           Build jobs in memory instead of printing
  -out <file>        With -dry-run, save the ESC/POS bytes
  -text <text>       Body of the custom text demo
  -image <path>      Image printed by the image demo
  -tui               Interactive console
  -watch             Log printers as they come and go

Commands:
  demo list                      List demo documents
  demo <name>                    Print a demo (receipt, text, barcode, table, ...)
  demo text <text...>            Print custom text
  drawer                         Open the cash drawer
  print <receipt> [--var k=v]    Print a .receipt template
  print --compose <commands...>  Compose and print from arguments
  preview <demo|receipt> [png]   Render a PNG preview without printing
  printer list|select|name|default
  detect                         Scan for printers
  job list|status <id>|clear
  info                           Show the active printer configuration

Compose:
  text:"Hello World" size:2 bold:true align:center
  feed:2  divider:-  barcode:DEMO123 format:CODE39  qrcode:https://example.com
  image:logo.png dither:true  cut  partial_cut  drawer

Examples:
  receipt-cli demo receipt
  receipt-cli -dry-run -out receipt.bin demo barcode
  receipt-cli preview receipt receipt.png
  receipt-cli print ./order.receipt --var customer="Jane Doe"
  receipt-cli print --compose text:"Title" size:2 align:center feed:1 cut
  receipt-cli printer name usb-04b8-0202 "Front Counter"
`)
}
