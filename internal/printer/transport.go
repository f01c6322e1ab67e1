package printer

import (
	"bytes"
	"sync"
	"time"
)

// Transport is a sequential byte sink attached to one physical printer.
// Implementations must be pointer types; the engine keys its per-device
// lock on the Transport value.
type Transport interface {
	Write(p []byte) (int, error)
	Flush() error
	Close() error
	String() string
}

// WriteDeadliner is implemented by transports that can bound a write
// themselves instead of relying on the engine's watchdog.
type WriteDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// ChunkLimiter is implemented by transports with a maximum write size
type ChunkLimiter interface {
	MaxWriteSize() int
}

// MemoryTransport collects written bytes. Used for dry runs and previews.
type MemoryTransport struct {
	name string
	buf  bytes.Buffer
	mu   sync.Mutex
}

// NewMemoryTransport creates an in-memory sink
func NewMemoryTransport(name string) *MemoryTransport {
	if name == "" {
		name = "memory"
	}
	return &MemoryTransport{name: name}
}

// Write appends data
func (m *MemoryTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

// Flush is a no-op
func (m *MemoryTransport) Flush() error { return nil }

// Close is a no-op
func (m *MemoryTransport) Close() error { return nil }

func (m *MemoryTransport) String() string { return m.name }

// Bytes returns everything written so far
func (m *MemoryTransport) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.buf.Bytes()...)
}

// Reset discards collected bytes
func (m *MemoryTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf.Reset()
}
