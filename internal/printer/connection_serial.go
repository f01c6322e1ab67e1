package printer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tarm/serial"
)

// DefaultBaud is the rate most thermal printers ship with
const DefaultBaud = 9600

// SerialConnection represents a serial printer connection
type SerialConnection struct {
	device string
	port   atomic.Pointer[serial.Port]
	mu     sync.Mutex // serializes writes
}

// ConnectSerial opens a serial printer
func ConnectSerial(device string, baud int) (*SerialConnection, error) {
	if baud == 0 {
		baud = DefaultBaud
	}

	config := &serial.Config{
		Name: device,
		Baud: baud,
	}

	port, err := serial.OpenPort(config)
	if err != nil {
		return nil, classify("open", "serial:"+device, fmt.Errorf("failed to open serial port: %w", err))
	}

	c := &SerialConnection{device: device}
	c.port.Store(port)
	return c, nil
}

// Write sends data to the serial printer
func (c *SerialConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	port := c.port.Load()
	if port == nil {
		return 0, &TransportError{Kind: KindWriteError, Op: "write", Transport: c.String(), Err: fmt.Errorf("port closed")}
	}
	return port.Write(data)
}

// Flush is a no-op: writes are synchronous, and the port's own Flush
// discards untransmitted data.
func (c *SerialConnection) Flush() error {
	return nil
}

// Close closes the port without waiting for a write stuck on flow control
func (c *SerialConnection) Close() error {
	port := c.port.Swap(nil)
	if port == nil {
		return nil
	}
	return port.Close()
}

func (c *SerialConnection) String() string {
	return "serial:" + c.device
}
