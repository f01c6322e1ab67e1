package registry

import (
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printers.json")
	reg, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	return reg, path
}

func TestNew(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if reg == nil {
		t.Fatal("Registry is nil")
	}
	if reg.GetDefault() != "" {
		t.Error("Expected no default printer")
	}
}

func TestGetPrinterID_USB(t *testing.T) {
	reg, _ := newTestRegistry(t)

	info := PrinterInfo{
		Type:        "usb",
		VID:         0x04B8,
		PID:         0x0E15,
		Description: "Epson TM-T20",
	}

	id1 := reg.GetPrinterID(info)
	if id1 == "" {
		t.Error("Expected non-empty printer ID")
	}

	id2 := reg.GetPrinterID(info)
	if id1 != id2 {
		t.Errorf("Expected same ID for same printer: %s != %s", id1, id2)
	}
}

func TestGetPrinterID_SerialAndDevice(t *testing.T) {
	reg, _ := newTestRegistry(t)

	serialID := reg.GetPrinterID(PrinterInfo{Type: "serial", Device: "/dev/ttyUSB0", Description: "Serial Printer"})
	deviceID := reg.GetPrinterID(PrinterInfo{Type: "device", Device: "/dev/ttyUSB0", Description: "Serial Printer"})
	if serialID == "" || deviceID == "" {
		t.Fatal("Expected non-empty printer IDs")
	}
	if serialID == deviceID {
		t.Error("Expected serial and device entries on the same path to differ")
	}
}

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		info     PrinterInfo
		expected string
	}{
		{PrinterInfo{Type: "usb", VID: 0x04B8, PID: 0x0E15}, "usb:04B8:0E15"},
		{PrinterInfo{Type: "serial", Device: "/dev/ttyS0"}, "serial:/dev/ttyS0"},
		{PrinterInfo{Type: "device", Device: "/dev/usb/lp0"}, "device:/dev/usb/lp0"},
	}

	for _, tt := range tests {
		if got := generateIdentityKey(tt.info); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}

	fallback := generateIdentityKey(PrinterInfo{Type: "usb", Description: "No IDs"})
	if len(fallback) != len("hash:")+32 {
		t.Errorf("Expected md5 fallback key, got '%s'", fallback)
	}
}

func TestSetAndGetPrinterName(t *testing.T) {
	reg, _ := newTestRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "usb", VID: 0x04B8, PID: 0x0E15, Description: "Test Printer"})

	if !reg.SetPrinterName(id, "Kitchen Printer") {
		t.Error("Expected successful name set")
	}

	name := reg.GetPrinterName(id)
	if name != "Kitchen Printer" {
		t.Errorf("Expected 'Kitchen Printer', got '%s'", name)
	}

	if reg.SetPrinterName("missing", "x") {
		t.Error("Expected name set on unknown printer to fail")
	}
}

func TestGetPrinterInfo(t *testing.T) {
	reg, _ := newTestRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "usb", VID: 0x04B8, PID: 0x0E15, Description: "Test Printer"})
	reg.SetPrinterName(id, "Front Counter")
	reg.SetPrinterProfile(id, "58mm")

	entry := reg.GetPrinterInfo(id)
	if entry == nil {
		t.Fatal("Expected printer info, got nil")
	}

	if entry.Type != "usb" {
		t.Errorf("Expected type 'usb', got '%s'", entry.Type)
	}
	if entry.VID != 0x04B8 {
		t.Errorf("Expected VID 0x04B8, got 0x%04X", entry.VID)
	}
	if entry.Name != "Front Counter" {
		t.Errorf("Expected name 'Front Counter', got '%s'", entry.Name)
	}
	if entry.Profile != "58mm" {
		t.Errorf("Expected profile '58mm', got '%s'", entry.Profile)
	}

	entry.Name = "changed"
	if reg.GetPrinterName(id) != "Front Counter" {
		t.Error("Expected GetPrinterInfo to return a copy")
	}
}

func TestDefaultPrinter(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if reg.SetDefault("unknown") {
		t.Error("Expected default on unknown printer to fail")
	}

	id := reg.GetPrinterID(PrinterInfo{Type: "serial", Device: "/dev/ttyS0", Description: "Serial"})
	if !reg.SetDefault(id) {
		t.Fatal("Expected default to be set")
	}
	if reg.GetDefault() != id {
		t.Errorf("Expected default '%s', got '%s'", id, reg.GetDefault())
	}

	reg.RemovePrinter(id)
	if reg.GetDefault() != "" {
		t.Error("Expected default to clear when printer is removed")
	}
}

func TestRemovePrinter(t *testing.T) {
	reg, _ := newTestRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "usb", VID: 0x1234, PID: 0x5678, Description: "Test"})

	if !reg.RemovePrinter(id) {
		t.Error("Expected successful removal")
	}

	if reg.GetPrinterInfo(id) != nil {
		t.Error("Expected nil after removal")
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "printers.json")

	reg1, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	info := PrinterInfo{Type: "usb", VID: 0xAAAA, PID: 0xBBBB, Description: "Persistent Printer"}
	id1 := reg1.GetPrinterID(info)
	reg1.SetPrinterName(id1, "My Printer")
	reg1.SetDefault(id1)
	if err := reg1.SaveError(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reg2, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reload registry: %v", err)
	}

	id2 := reg2.GetPrinterID(info)
	if id1 != id2 {
		t.Errorf("Expected persistent ID: %s != %s", id1, id2)
	}
	if reg2.GetPrinterName(id2) != "My Printer" {
		t.Errorf("Expected persistent name 'My Printer', got '%s'", reg2.GetPrinterName(id2))
	}
	if reg2.GetDefault() != id1 {
		t.Errorf("Expected persistent default '%s', got '%s'", id1, reg2.GetDefault())
	}
}

func TestInMemory(t *testing.T) {
	reg, err := New("")
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	id := reg.GetPrinterID(PrinterInfo{Type: "device", Device: "/dev/usb/lp0"})
	if reg.GetPrinterInfo(id) == nil {
		t.Error("Expected in-memory entry")
	}
	if reg.SaveError() != nil {
		t.Error("Expected no save error without a path")
	}
}
