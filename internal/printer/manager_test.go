package printer

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/thereceipt/receipt-demo/internal/registry"
)

func newTestManager(t *testing.T) (*Manager, *registry.Registry) {
	t.Helper()
	reg, err := registry.New("")
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	return NewManager(reg, zaptest.NewLogger(t)), reg
}

func TestAddPrinter(t *testing.T) {
	m, _ := newTestManager(t)

	p := m.AddPrinter(registry.PrinterInfo{Type: TypeSerial, Device: "/dev/ttyS0", Description: "Counter"})
	if p.ID == "" {
		t.Fatal("Expected printer ID")
	}
	if p.Port != "/dev/ttyS0" {
		t.Errorf("Expected port '/dev/ttyS0', got '%s'", p.Port)
	}
	if m.GetPrinter(p.ID) != p {
		t.Error("Expected printer to be stored")
	}

	usb := m.AddPrinter(registry.PrinterInfo{Type: TypeUSB, VID: 0x04B8, PID: 0x0202, Description: "Epson"})
	if usb.Port != "usb:04B8:0202" {
		t.Errorf("Expected port 'usb:04B8:0202', got '%s'", usb.Port)
	}
}

func TestResolve(t *testing.T) {
	m, reg := newTestManager(t)

	if _, err := m.Resolve(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not-found with no printers, got %v", err)
	}

	a := m.AddPrinter(registry.PrinterInfo{Type: TypeDevice, Device: "/dev/usb/lp0", Description: "A printer"})
	b := m.AddPrinter(registry.PrinterInfo{Type: TypeDevice, Device: "/dev/usb/lp1", Description: "B printer"})

	p, err := m.Resolve("auto")
	if err != nil || p.ID != a.ID {
		t.Errorf("Expected first printer by name, got %v %v", p, err)
	}

	reg.SetDefault(b.ID)
	p, _ = m.Resolve("")
	if p.ID != b.ID {
		t.Errorf("Expected default printer %s, got %s", b.ID, p.ID)
	}

	m.SetPrinterName(a.ID, "Kitchen")
	p, _ = m.Resolve("kitchen")
	if p == nil || p.ID != a.ID {
		t.Error("Expected lookup by custom name")
	}

	p, _ = m.Resolve("/dev/usb/lp1")
	if p == nil || p.ID != b.ID {
		t.Error("Expected lookup by device path")
	}

	if _, err := m.Resolve("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not-found, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	p := &Printer{Description: "USB: 04B8:0202"}
	if p.DisplayName() != "USB: 04B8:0202" {
		t.Errorf("Expected description, got '%s'", p.DisplayName())
	}
	p.Name = "Bar"
	if p.DisplayName() != "Bar" {
		t.Errorf("Expected 'Bar', got '%s'", p.DisplayName())
	}
}

func TestParseHexID(t *testing.T) {
	if parseHexID("04b8") != 0x04B8 {
		t.Error("Expected 0x04B8")
	}
	if parseHexID("") != 0 {
		t.Error("Expected 0 for empty ID")
	}
}
