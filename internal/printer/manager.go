// Package printer discovers receipt printers and executes print jobs on them
package printer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"github.com/thereceipt/receipt-demo/internal/registry"
)

// Printer types
const (
	TypeUSB    = "usb"
	TypeSerial = "serial"
	TypeDevice = "device"
)

// Manager handles printer detection and management
type Manager struct {
	registry *registry.Registry
	printers map[string]*Printer
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Printer represents a detected printer
type Printer struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Driver      string `json:"driver"`
	Port        string `json:"port"`
	Status      string `json:"status"`
	Device      string `json:"device,omitempty"`
	VID         uint16 `json:"vid,omitempty"`
	PID         uint16 `json:"pid,omitempty"`
	Profile     string `json:"profile,omitempty"`
}

// DisplayName prefers the user-set name
func (p *Printer) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Description
}

// NewManager creates a new printer manager
func NewManager(reg *registry.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry: reg,
		printers: make(map[string]*Printer),
		logger:   logger.With(zap.String("component", "manager")),
	}
}

// DetectPrinters scans USB, serial and printer device nodes
func (m *Manager) DetectPrinters() ([]*Printer, error) {
	var printers []*Printer

	usbPrinters, err := m.detectUSB()
	if err != nil {
		m.logger.Warn("USB detection failed", zap.Error(err))
	} else {
		printers = append(printers, usbPrinters...)
	}

	serialPrinters, err := m.detectSerial()
	if err != nil {
		m.logger.Warn("Serial detection failed", zap.Error(err))
	} else {
		printers = append(printers, serialPrinters...)
	}

	printers = append(printers, m.detectDevices()...)

	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(printers))
	for _, p := range printers {
		m.printers[p.ID] = p
		seen[p.ID] = true
	}
	// hand-configured printers stay until the process exits
	for id, p := range m.printers {
		if !seen[id] && p.Status != "configured" {
			delete(m.printers, id)
		}
	}
	m.logger.Info("Printer detection finished", zap.Int("found", len(printers)))

	return m.sortedLocked(), nil
}

// GetPrinter returns a printer by ID
func (m *Manager) GetPrinter(id string) *Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.printers[id]
}

// GetAllPrinters returns all known printers sorted by name
func (m *Manager) GetAllPrinters() []*Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedLocked()
}

func (m *Manager) sortedLocked() []*Printer {
	result := make([]*Printer, 0, len(m.printers))
	for _, p := range m.printers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayName() == result[j].DisplayName() {
			return result[i].ID < result[j].ID
		}
		return result[i].DisplayName() < result[j].DisplayName()
	})
	return result
}

// SetPrinterName sets a custom name for a printer
func (m *Manager) SetPrinterName(id string, name string) bool {
	if !m.registry.SetPrinterName(id, name) {
		return false
	}

	m.mu.Lock()
	if printer, exists := m.printers[id]; exists {
		printer.Name = name
	}
	m.mu.Unlock()
	return true
}

// AddPrinter registers a printer that detection cannot see, e.g. a serial
// port configured by hand
func (m *Manager) AddPrinter(info registry.PrinterInfo) *Printer {
	id := m.registry.GetPrinterID(info)
	p := &Printer{
		ID:          id,
		Type:        info.Type,
		Description: info.Description,
		Driver:      "ESC/POS " + info.Type,
		Device:      info.Device,
		VID:         info.VID,
		PID:         info.PID,
		Status:      "configured",
		Name:        m.registry.GetPrinterName(id),
	}
	p.Port = portName(p)
	if entry := m.registry.GetPrinterInfo(id); entry != nil {
		p.Profile = entry.Profile
	}

	m.mu.Lock()
	m.printers[id] = p
	m.mu.Unlock()
	return p
}

// Resolve picks a printer by ID or name. An empty selector or
// "auto" returns the registry default, then the first known printer.
func (m *Manager) Resolve(selector string) (*Printer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if selector == "" || strings.EqualFold(selector, "auto") {
		if def := m.registry.GetDefault(); def != "" {
			if p, ok := m.printers[def]; ok {
				return p, nil
			}
		}
		all := m.sortedLocked()
		if len(all) == 0 {
			return nil, &TransportError{Kind: KindNotFound, Op: "resolve", Err: fmt.Errorf("no printers detected")}
		}
		return all[0], nil
	}

	if p, ok := m.printers[selector]; ok {
		return p, nil
	}
	for _, p := range m.printers {
		if strings.EqualFold(p.Name, selector) || strings.EqualFold(p.Device, selector) {
			return p, nil
		}
	}
	return nil, &TransportError{Kind: KindNotFound, Op: "resolve", Transport: selector}
}

// Open connects to a printer
func (m *Manager) Open(p *Printer, baud int) (Transport, error) {
	m.logger.Info("Opening printer", zap.String("id", p.ID), zap.String("port", p.Port))

	var t Transport
	var err error
	switch p.Type {
	case TypeUSB:
		t, err = openUSB(p.VID, p.PID)
	case TypeSerial:
		t, err = openSerial(p.Device, baud)
	case TypeDevice:
		t, err = openDevice(p.Device)
	default:
		return nil, fmt.Errorf("unsupported printer type: %s", p.Type)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetDefault marks a printer as the one "auto" resolves to
func (m *Manager) SetDefault(id string) bool {
	return m.registry.SetDefault(id)
}

// Default returns the ID of the default printer, or ""
func (m *Manager) Default() string {
	return m.registry.GetDefault()
}

func openUSB(vid, pid uint16) (Transport, error) {
	c, err := ConnectUSB(vid, pid)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openSerial(device string, baud int) (Transport, error) {
	c, err := ConnectSerial(device, baud)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openDevice(path string) (Transport, error) {
	c, err := ConnectDevice(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// detectUSB lists devices of the USB printer class
func (m *Manager) detectUSB() ([]*Printer, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var printers []*Printer

	devices, err := ctx.OpenDevices(isPrinterClass)
	// OpenDevices returns the devices it could open along with the first error
	for _, dev := range devices {
		desc := dev.Desc
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		dev.Close()

		description := fmt.Sprintf("USB: %04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
		if manufacturer != "" || product != "" {
			description = strings.TrimSpace(manufacturer + " " + product)
		}

		info := registry.PrinterInfo{
			Type:        TypeUSB,
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Description: description,
		}
		printers = append(printers, m.fromInfo(info, "USB Printing Support", "connected"))
	}
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	return printers, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// detectSerial lists serial ports. Ports are not opened: toggling DTR on
// some adapters resets the attached printer.
func (m *Manager) detectSerial() ([]*Printer, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	var printers []*Printer
	for _, port := range ports {
		if skipSerialPort(port.Name) {
			continue
		}
		description := "Serial: " + filepath.Base(port.Name)
		driver := "Serial port"
		var vid, pid uint16
		if port.IsUSB {
			driver = "USB serial adapter"
			vid = parseHexID(port.VID)
			pid = parseHexID(port.PID)
			if port.Product != "" {
				description = port.Product + " (" + filepath.Base(port.Name) + ")"
			}
		}

		info := registry.PrinterInfo{
			Type:        TypeSerial,
			Device:      port.Name,
			VID:         vid,
			PID:         pid,
			Description: description,
		}
		printers = append(printers, m.fromInfo(info, driver, "available"))
	}

	return printers, nil
}

func skipSerialPort(name string) bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	for _, pattern := range []string{"Bluetooth", "debug-console", "KeySerial", "/dev/tty."} {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// detectDevices lists usblp character devices
func (m *Manager) detectDevices() []*Printer {
	if runtime.GOOS != "linux" {
		return nil
	}
	paths, _ := filepath.Glob("/dev/usb/lp*")

	var printers []*Printer
	for _, path := range paths {
		status := "ready"
		if f, err := os.OpenFile(path, os.O_WRONLY, 0); err != nil {
			status = string(classify("open", path, err).Kind)
		} else {
			f.Close()
		}
		info := registry.PrinterInfo{
			Type:        TypeDevice,
			Device:      path,
			Description: "Printer device " + filepath.Base(path),
		}
		printers = append(printers, m.fromInfo(info, "usblp", status))
	}
	return printers
}

func (m *Manager) fromInfo(info registry.PrinterInfo, driver, status string) *Printer {
	id := m.registry.GetPrinterID(info)
	p := &Printer{
		ID:          id,
		Type:        info.Type,
		Description: info.Description,
		Driver:      driver,
		Status:      status,
		Device:      info.Device,
		VID:         info.VID,
		PID:         info.PID,
		Name:        m.registry.GetPrinterName(id),
	}
	if entry := m.registry.GetPrinterInfo(id); entry != nil {
		p.Profile = entry.Profile
	}
	p.Port = portName(p)
	return p
}

func portName(p *Printer) string {
	switch p.Type {
	case TypeUSB:
		return usbName(p.VID, p.PID)
	default:
		return p.Device
	}
}

func parseHexID(s string) uint16 {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
