package printer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Opener connects to a printer
type Opener func(p *Printer) (Transport, error)

// ConnectionPool keeps one open transport per printer ID so that
// consecutive jobs reuse the same device handle
type ConnectionPool struct {
	open        Opener
	engine      *Engine
	connections map[string]Transport
	logger      *zap.Logger
	mu          sync.Mutex
}

// NewConnectionPool creates a new connection pool. The engine, when set,
// drops a closed transport's abandoned write; its pending reset stays.
func NewConnectionPool(open Opener, engine *Engine, logger *zap.Logger) *ConnectionPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionPool{
		open:        open,
		engine:      engine,
		connections: make(map[string]Transport),
		logger:      logger.With(zap.String("component", "pool")),
	}
}

// Get returns the open transport for a printer, connecting on first use
func (p *ConnectionPool) Get(printer *Printer) (Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.connections[printer.ID]; ok {
		return t, nil
	}

	t, err := p.open(printer)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", printer.DisplayName(), err)
	}
	p.connections[printer.ID] = t
	p.logger.Info("Printer connected", zap.String("id", printer.ID), zap.String("transport", t.String()))
	return t, nil
}

// Disconnect closes a printer connection
func (p *ConnectionPool) Disconnect(printerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.connections[printerID]
	if !ok {
		return nil
	}
	delete(p.connections, printerID)
	return p.closeLocked(printerID, t)
}

// DisconnectAll closes all connections
func (p *ConnectionPool) DisconnectAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, t := range p.connections {
		delete(p.connections, id)
		_ = p.closeLocked(id, t)
	}
}

func (p *ConnectionPool) closeLocked(id string, t Transport) error {
	if p.engine != nil {
		p.engine.Forget(t)
	}
	err := t.Close()
	if err != nil {
		p.logger.Warn("Close failed", zap.String("id", id), zap.Error(err))
	}
	return err
}

// IsConnected checks if a printer is connected
func (p *ConnectionPool) IsConnected(printerID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, exists := p.connections[printerID]
	return exists
}
