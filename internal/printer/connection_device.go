package printer

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// DeviceConnection writes to a printer character device such as
// /dev/usb/lp0 handed out by the kernel's usblp driver
type DeviceConnection struct {
	path string
	file atomic.Pointer[os.File]
	mu   sync.Mutex // serializes writes
}

// ConnectDevice opens a raw printer device for writing
func ConnectDevice(path string) (*DeviceConnection, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, classify("open", "device:"+path, fmt.Errorf("failed to open printer device: %w", err))
	}
	c := &DeviceConnection{path: path}
	c.file.Store(f)
	return c, nil
}

// Write sends data to the device
func (c *DeviceConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.file.Load()
	if f == nil {
		return 0, &TransportError{Kind: KindWriteError, Op: "write", Transport: c.String(), Err: os.ErrClosed}
	}
	return f.Write(data)
}

// SetWriteDeadline bounds blocked writes where the device supports polling
func (c *DeviceConnection) SetWriteDeadline(t time.Time) error {
	f := c.file.Load()
	if f == nil {
		return os.ErrClosed
	}
	return f.SetWriteDeadline(t)
}

// Flush is a no-op; character devices have no userspace buffer
func (c *DeviceConnection) Flush() error {
	return nil
}

// Close closes the device without waiting for the write lock, so a write
// blocked in the poller returns with os.ErrClosed
func (c *DeviceConnection) Close() error {
	f := c.file.Swap(nil)
	if f == nil {
		return nil
	}
	return f.Close()
}

func (c *DeviceConnection) String() string {
	return "device:" + c.path
}
