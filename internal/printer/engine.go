package printer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereceipt/receipt-demo/internal/escpos"
)

// DefaultTimeout bounds each chunk written to a device
const DefaultTimeout = 5 * time.Second

// EngineConfig tunes how sessions are flushed to devices
type EngineConfig struct {
	Timeout   time.Duration // per chunk
	ChunkSize int           // 0 writes the whole job at once
}

// Result describes a completed print job
type Result struct {
	JobID        string        `json:"job_id"`
	Transport    string        `json:"transport"`
	BytesWritten int           `json:"bytes_written"`
	Chunks       int           `json:"chunks"`
	Duration     time.Duration `json:"duration"`
	Reset        bool          `json:"reset"` // ESC @ was prepended after an earlier failure
}

// Engine flushes sessions to transports. At most one job is in flight per
// device; failed jobs are never retried. Device state is keyed on the
// transport's name, so a reconnected handle to the same printer inherits a
// pending reset.
type Engine struct {
	cfg    EngineConfig
	logger *zap.Logger

	mu      sync.Mutex
	devices map[string]*deviceState
}

type deviceState struct {
	sem        chan struct{}
	needsReset atomic.Bool
	stuck      <-chan writeResult // write abandoned by the watchdog
}

type writeResult struct {
	n   int
	err error
}

// NewEngine creates an execution engine
func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ChunkSize < 0 {
		cfg.ChunkSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "engine")),
		devices: make(map[string]*deviceState),
	}
}

func (e *Engine) device(t Transport) *deviceState {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.devices[t.String()]
	if !ok {
		d = &deviceState{sem: make(chan struct{}, 1)}
		e.devices[t.String()] = d
	}
	return d
}

// Forget is called once t has been closed. A write abandoned on the old
// handle no longer blocks the device; the reset flag is kept for the next
// handle.
func (e *Engine) Forget(t Transport) {
	e.mu.Lock()
	d, ok := e.devices[t.String()]
	e.mu.Unlock()
	if !ok {
		return
	}

	select {
	case d.sem <- struct{}{}:
		d.stuck = nil
		<-d.sem
	default:
		// a job is running; it owns d.stuck
	}
}

// NeedsReset reports whether the next job on t will be prefixed with ESC @
func (e *Engine) NeedsReset(t Transport) bool {
	return e.device(t).needsReset.Load()
}

// Execute writes the session's command stream to t. ctx is only consulted
// while waiting for the device; once the first byte is sent the job runs to
// completion or failure. The session is left untouched and must be cleared
// by the caller before reuse.
func (e *Engine) Execute(ctx context.Context, t Transport, s *escpos.Session) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("print job not started: %w", err)
	}
	data := s.Bytes()
	d := e.device(t)

	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("print job not started: %w", ctx.Err())
	}
	defer func() { <-d.sem }()

	// select picks randomly when both cases were ready
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("print job not started: %w", err)
	}

	result := &Result{JobID: uuid.NewString(), Transport: t.String()}
	log := e.logger.With(zap.String("job_id", result.JobID), zap.String("transport", t.String()))
	start := time.Now()

	if d.stuck != nil {
		select {
		case <-d.stuck:
			d.stuck = nil
		case <-time.After(e.cfg.Timeout):
			err := &TransportError{Kind: KindTimeout, Op: "write", Transport: t.String(),
				Err: fmt.Errorf("previous write still blocked")}
			log.Error("Print job rejected", zap.Error(err))
			return nil, err
		}
	}

	if d.needsReset.Load() {
		log.Warn("Device state unknown after failed job, re-initializing")
		data = append(escpos.InitializeCommand(), data...)
		result.Reset = true
	}

	chunks := split(data, e.chunkSize(t))
	log.Info("Print job started", zap.Int("bytes", len(data)), zap.Int("chunks", len(chunks)))

	dl, hasDeadline := t.(WriteDeadliner)
	if hasDeadline {
		defer func() {
			// an abandoned write still needs its deadline to return
			if d.stuck == nil {
				_ = dl.SetWriteDeadline(time.Time{})
			}
		}()
	}

	for i, chunk := range chunks {
		if hasDeadline {
			_ = dl.SetWriteDeadline(time.Now().Add(e.cfg.Timeout))
		}
		n, err := e.guard(d, func() (int, error) { return writeFull(t, chunk) })
		result.BytesWritten += n
		if err != nil {
			return nil, e.fail(log, d, "write", t, result, err)
		}
		result.Chunks++
		log.Debug("Chunk written", zap.Int("chunk", i), zap.Int("bytes", n))
	}

	if _, err := e.guard(d, func() (int, error) { return 0, t.Flush() }); err != nil {
		return nil, e.fail(log, d, "flush", t, result, err)
	}

	d.needsReset.Store(false)
	result.Duration = time.Since(start)
	log.Info("Print job completed",
		zap.Int("bytes_written", result.BytesWritten),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (e *Engine) fail(log *zap.Logger, d *deviceState, op string, t Transport, result *Result, err error) error {
	d.needsReset.Store(true)
	te := classify(op, t.String(), err)
	te.BytesWritten = result.BytesWritten
	log.Error("Print job failed",
		zap.String("kind", string(te.Kind)),
		zap.Int("bytes_written", te.BytesWritten),
		zap.Error(err),
	)
	return te
}

func (e *Engine) chunkSize(t Transport) int {
	size := e.cfg.ChunkSize
	if l, ok := t.(ChunkLimiter); ok {
		if limit := l.MaxWriteSize(); limit > 0 && (size == 0 || limit < size) {
			size = limit
		}
	}
	return size
}

// guard runs op under the per-chunk timeout. A call still blocked when the
// timer fires is abandoned and remembered on the device state.
func (e *Engine) guard(d *deviceState, op func() (int, error)) (int, error) {
	done := make(chan writeResult, 1)
	go func() {
		n, err := op()
		done <- writeResult{n, err}
	}()

	timer := time.NewTimer(e.cfg.Timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.n, r.err
	case <-timer.C:
		d.stuck = done
		return 0, &TransportError{Kind: KindTimeout, Err: fmt.Errorf("no progress within %s", e.cfg.Timeout)}
	}
}

// writeFull keeps writing until p is consumed, so short writes are resumed
// rather than reported
func writeFull(t Transport, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := t.Write(p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

func split(data []byte, size int) [][]byte {
	if size <= 0 || len(data) <= size {
		return [][]byte{data}
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
