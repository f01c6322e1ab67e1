package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
)

// usbMaxWrite caps a single bulk transfer
const usbMaxWrite = 4096

// USBConnection represents a USB printer connection
type USBConnection struct {
	vid, pid uint16
	ctx      *gousb.Context
	device   *gousb.Device
	cfg      *gousb.Config
	iface    *gousb.Interface
	done     func()
	endpoint *gousb.OutEndpoint
	mu       sync.Mutex // serializes writes and guards the handles

	// cancel aborts an in-flight transfer; bulk writes have no timeout of their own
	transfers context.Context
	cancel    context.CancelFunc

	deadlineMu sync.Mutex
	deadline   time.Time
}

// ConnectUSB claims the first bulk OUT endpoint of a USB printer.
// Fails if libusb is unavailable.
func ConnectUSB(vid, pid uint16) (*USBConnection, error) {
	name := usbName(vid, pid)
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, classify("open", name, usbError(err))
	}
	if dev == nil {
		ctx.Close()
		return nil, &TransportError{Kind: KindNotFound, Op: "open", Transport: name}
	}

	conn := &USBConnection{vid: vid, pid: pid, ctx: ctx, device: dev}
	conn.transfers, conn.cancel = context.WithCancel(context.Background())

	// DefaultInterface works for most printers; retry once with kernel
	// driver auto-detach
	iface, done, err := dev.DefaultInterface()
	if err != nil {
		dev.SetAutoDetach(true)
		iface, done, err = dev.DefaultInterface()
	}
	if err == nil {
		if ep := outEndpoint(iface); ep != nil {
			conn.iface, conn.done, conn.endpoint = iface, done, ep
			return conn, nil
		}
		done()
	}

	// Walk every configuration and interface
	var lastErr error
	for _, cfgDesc := range dev.Desc.Configs {
		cfg, err := dev.Config(cfgDesc.Number)
		if err != nil {
			lastErr = fmt.Errorf("failed to set config %d: %w", cfgDesc.Number, err)
			continue
		}

		for _, ifaceDesc := range cfgDesc.Interfaces {
			iface, err := cfg.Interface(ifaceDesc.Number, 0)
			if err != nil {
				// some devices need a moment after the config switch
				time.Sleep(100 * time.Millisecond)
				iface, err = cfg.Interface(ifaceDesc.Number, 0)
				if err != nil {
					lastErr = fmt.Errorf("failed to claim interface %d: %w", ifaceDesc.Number, err)
					continue
				}
			}

			if ep := outEndpoint(iface); ep != nil {
				conn.cfg, conn.iface, conn.endpoint = cfg, iface, ep
				return conn, nil
			}
			iface.Close()
		}
		cfg.Close()
	}

	dev.Close()
	ctx.Close()
	conn.cancel()

	if lastErr != nil {
		return nil, classify("open", name, usbError(lastErr))
	}
	return nil, &TransportError{Kind: KindNotFound, Op: "open", Transport: name,
		Err: fmt.Errorf("no bulk OUT endpoint")}
}

func outEndpoint(iface *gousb.Interface) *gousb.OutEndpoint {
	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction != gousb.EndpointDirectionOut {
			continue
		}
		if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
			return ep
		}
	}
	return nil
}

// usbError tags libusb failures with a transport error kind
func usbError(err error) error {
	kind := KindWriteError
	switch {
	case errors.Is(err, gousb.ErrorNoDevice), errors.Is(err, gousb.ErrorNotFound):
		kind = KindNotFound
	case errors.Is(err, gousb.ErrorAccess):
		kind = KindAccessDenied
	case errors.Is(err, gousb.ErrorTimeout):
		kind = KindTimeout
	default:
		return err
	}
	return &TransportError{Kind: kind, Err: err}
}

// Write sends data to the USB printer
func (c *USBConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.endpoint == nil {
		return 0, &TransportError{Kind: KindWriteError, Op: "write", Transport: c.String(), Err: fmt.Errorf("device closed")}
	}

	ctx := c.transfers
	if dl := c.writeDeadline(); !dl.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, dl)
		defer cancel()
	}
	n, err := c.endpoint.WriteContext(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
		return n, usbError(err)
	}
	return n, nil
}

// SetWriteDeadline bounds the bulk transfers of later writes
func (c *USBConnection) SetWriteDeadline(t time.Time) error {
	c.deadlineMu.Lock()
	defer c.deadlineMu.Unlock()
	c.deadline = t
	return nil
}

func (c *USBConnection) writeDeadline() time.Time {
	c.deadlineMu.Lock()
	defer c.deadlineMu.Unlock()
	return c.deadline
}

// Flush is a no-op; bulk transfers complete before Write returns
func (c *USBConnection) Flush() error {
	return nil
}

// MaxWriteSize caps each bulk transfer
func (c *USBConnection) MaxWriteSize() int {
	return usbMaxWrite
}

// Close aborts any in-flight transfer, then releases the interface and the device
func (c *USBConnection) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.endpoint = nil
	if c.done != nil {
		c.done()
		c.done = nil
	} else {
		if c.iface != nil {
			c.iface.Close()
		}
		if c.cfg != nil {
			c.cfg.Close()
		}
	}
	c.iface, c.cfg = nil, nil

	var err error
	if c.device != nil {
		err = c.device.Close()
		c.device = nil
	}
	if c.ctx != nil {
		c.ctx.Close()
		c.ctx = nil
	}
	return err
}

func (c *USBConnection) String() string {
	return usbName(c.vid, c.pid)
}

func usbName(vid, pid uint16) string {
	return fmt.Sprintf("usb:%04X:%04X", vid, pid)
}
