// Package registry manages persistent printer IDs, custom names and the
// default printer
package registry

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Registry manages printer identities and custom names
type Registry struct {
	filePath    string
	data        map[string]*PrinterEntry
	defaultID   string
	lastSaveErr error
	mu          sync.RWMutex
}

// PrinterEntry stores persistent information about a printer
type PrinterEntry struct {
	ID          string `json:"id"`
	IdentityKey string `json:"identity_key"`
	Type        string `json:"type"` // usb, serial, device
	VID         uint16 `json:"vid,omitempty"`
	PID         uint16 `json:"pid,omitempty"`
	Device      string `json:"device,omitempty"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`    // Custom user-set name
	Profile     string `json:"profile,omitempty"` // paper profile, e.g. 58mm
}

// PrinterInfo represents basic printer information for detection
type PrinterInfo struct {
	Type        string
	Description string
	Device      string
	VID         uint16
	PID         uint16
}

type fileFormat struct {
	Default  string                   `json:"default,omitempty"`
	Printers map[string]*PrinterEntry `json:"printers"`
}

// New creates a new Registry. An empty path keeps the registry in memory.
func New(filePath string) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		data:     make(map[string]*PrinterEntry),
	}

	if err := r.load(); err != nil {
		// If file doesn't exist, that's okay - we'll create it on first save
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
	}

	return r, nil
}

// GetPrinterID gets or creates a persistent ID for a printer
func (r *Registry) GetPrinterID(info PrinterInfo) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	identityKey := generateIdentityKey(info)

	if entry, exists := r.data[identityKey]; exists {
		return entry.ID
	}

	printerID := uuid.New().String()
	r.data[identityKey] = &PrinterEntry{
		ID:          printerID,
		IdentityKey: identityKey,
		Type:        info.Type,
		VID:         info.VID,
		PID:         info.PID,
		Device:      info.Device,
		Description: info.Description,
	}
	r.save()

	return printerID
}

// GetPrinterName gets the custom name for a printer, or empty string if not set
func (r *Registry) GetPrinterName(printerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry := r.findLocked(printerID); entry != nil {
		return entry.Name
	}
	return ""
}

// SetPrinterName sets a custom name for a printer
func (r *Registry) SetPrinterName(printerID string, name string) bool {
	return r.update(printerID, func(e *PrinterEntry) { e.Name = name })
}

// SetPrinterProfile records the paper profile used for a printer
func (r *Registry) SetPrinterProfile(printerID string, profile string) bool {
	return r.update(printerID, func(e *PrinterEntry) { e.Profile = profile })
}

func (r *Registry) update(printerID string, fn func(*PrinterEntry)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.findLocked(printerID)
	if entry == nil {
		return false
	}
	fn(entry)
	r.save()
	return true
}

// GetPrinterInfo gets all stored information for a printer
func (r *Registry) GetPrinterInfo(printerID string) *PrinterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry := r.findLocked(printerID); entry != nil {
		entryCopy := *entry
		return &entryCopy
	}
	return nil
}

// RemovePrinter removes a printer from the registry
func (r *Registry) RemovePrinter(printerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.data {
		if entry.ID == printerID {
			delete(r.data, key)
			if r.defaultID == printerID {
				r.defaultID = ""
			}
			r.save()
			return true
		}
	}
	return false
}

// SetDefault marks a known printer as the default
func (r *Registry) SetDefault(printerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(printerID) == nil {
		return false
	}
	r.defaultID = printerID
	r.save()
	return true
}

// GetDefault returns the default printer ID, or empty string if none is set
func (r *Registry) GetDefault() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// GetAll returns all registered printers
func (r *Registry) GetAll() map[string]*PrinterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*PrinterEntry, len(r.data))
	for k, v := range r.data {
		entryCopy := *v
		result[k] = &entryCopy
	}
	return result
}

// SaveError returns the error from the most recent failed save, if any.
// Saves are best effort; the in-memory registry stays authoritative.
func (r *Registry) SaveError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSaveErr
}

func (r *Registry) findLocked(printerID string) *PrinterEntry {
	for _, entry := range r.data {
		if entry.ID == printerID {
			return entry
		}
	}
	return nil
}

func (r *Registry) load() error {
	if r.filePath == "" {
		return nil
	}
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Printers != nil {
		r.data = f.Printers
	}
	r.defaultID = f.Default
	return nil
}

// save must be called with the lock held
func (r *Registry) save() {
	if r.filePath == "" {
		return
	}
	data, err := json.MarshalIndent(fileFormat{Default: r.defaultID, Printers: r.data}, "", "  ")
	if err == nil {
		if dir := filepath.Dir(r.filePath); dir != "." {
			err = os.MkdirAll(dir, 0755)
		}
	}
	if err == nil {
		err = os.WriteFile(r.filePath, data, 0644)
	}
	r.lastSaveErr = err
}

// generateIdentityKey creates a unique key for a printer based on its characteristics
func generateIdentityKey(info PrinterInfo) string {
	switch info.Type {
	case "usb":
		if info.VID != 0 && info.PID != 0 {
			return fmt.Sprintf("usb:%04X:%04X", info.VID, info.PID)
		}
	case "serial", "device":
		if info.Device != "" {
			return fmt.Sprintf("%s:%s", info.Type, info.Device)
		}
	}

	// Fallback: hash the description
	hash := md5.Sum([]byte(info.Description))
	return fmt.Sprintf("hash:%x", hash)
}
