package printer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Detector lists the printers currently attached
type Detector interface {
	DetectPrinters() ([]*Printer, error)
}

// Monitor polls a detector and reports printers that appear or disappear
type Monitor struct {
	detector  Detector
	interval  time.Duration
	logger    *zap.Logger
	OnAdded   func(*Printer)
	OnRemoved func(*Printer)

	previous map[string]*Printer
}

// NewMonitor creates a new printer monitor
func NewMonitor(detector Detector, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{
		detector: detector,
		interval: interval,
		logger:   logger.With(zap.String("component", "monitor")),
		previous: make(map[string]*Printer),
	}
}

// Run polls until ctx is done. The first scan reports every printer as added.
func (m *Monitor) Run(ctx context.Context) {
	m.Check()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check runs one detection pass
func (m *Monitor) Check() {
	current, err := m.detector.DetectPrinters()
	if err != nil {
		m.logger.Warn("Printer detection failed", zap.Error(err))
		return
	}

	currentMap := make(map[string]*Printer, len(current))
	for _, p := range current {
		currentMap[p.ID] = p
	}

	for _, p := range current {
		if _, exists := m.previous[p.ID]; !exists {
			m.logger.Info("Printer added", zap.String("id", p.ID), zap.String("name", p.DisplayName()))
			if m.OnAdded != nil {
				m.OnAdded(p)
			}
		}
	}

	for id, p := range m.previous {
		if _, exists := currentMap[id]; !exists {
			m.logger.Info("Printer removed", zap.String("id", id), zap.String("name", p.DisplayName()))
			if m.OnRemoved != nil {
				m.OnRemoved(p)
			}
		}
	}

	m.previous = currentMap
}
