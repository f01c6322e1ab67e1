// Package preview decodes ESC/POS command streams and renders them as
// images, so a job can be checked without paper
package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/thereceipt/receipt-demo/internal/escpos"
)

// Op is one decoded printer action
type Op interface {
	op()
}

// Text is a run of characters printed with one style
type Text struct {
	Text  string
	Style escpos.Style
}

// LineFeed ends the current line
type LineFeed struct{}

// Feed prints the pending line and advances n lines
type Feed struct {
	Lines int
}

// Cut separates the paper
type Cut struct {
	Partial bool
}

// Drawer pulses the cash drawer
type Drawer struct{}

// Initialize resets the printer
type Initialize struct{}

// Barcode is a printed 1D symbol
type Barcode struct {
	Symbology escpos.Symbology
	Payload   string
	Width     int
	Height    int
	HRI       escpos.HRIPosition
	Align     escpos.Align
}

// QRCode is a printed QR symbol
type QRCode struct {
	Payload    string
	CellSize   int
	Correction escpos.QRLevel
	Model      int
	Align      escpos.Align
}

// Graphic is one printed raster strip
type Graphic struct {
	Image *image.Gray
	Align escpos.Align
}

func (Text) op()       {}
func (LineFeed) op()   {}
func (Feed) op()       {}
func (Cut) op()        {}
func (Drawer) op()     {}
func (Initialize) op() {}
func (Barcode) op()    {}
func (QRCode) op()     {}
func (Graphic) op()    {}

// DecodeError reports a byte sequence the decoder does not understand
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at byte %d: %s", e.Offset, e.Reason)
}

var symbologyByCode = map[byte]escpos.Symbology{
	65: escpos.UPCA,
	67: escpos.EAN13,
	68: escpos.EAN8,
	69: escpos.CODE39,
	73: escpos.CODE128,
}

type decoder struct {
	data    []byte
	pos     int
	ops     []Op
	style   escpos.Style
	charset escpos.Charset
	text    []byte

	barcode Barcode
	qr      QRCode
	graphic *image.Gray
}

// Decode parses a command stream produced by escpos.Session
func Decode(data []byte) ([]Op, error) {
	d := &decoder{data: data}
	d.reset()
	d.barcode = Barcode{Width: escpos.DefaultBarcodeWidth, Height: 162}
	d.qr = QRCode{CellSize: escpos.DefaultQRCellSize, Model: escpos.DefaultQRModel}

	for d.pos < len(d.data) {
		b := d.data[d.pos]
		var err error
		switch {
		case b == escpos.ESC:
			d.flushText()
			err = d.esc()
		case b == escpos.GS:
			d.flushText()
			err = d.gs()
		case b == escpos.LF:
			d.flushText()
			d.ops = append(d.ops, LineFeed{})
			d.pos++
		case b == '\r':
			d.pos++
		case b >= 0x20 || b == '\t':
			d.text = append(d.text, b)
			d.pos++
		default:
			err = &DecodeError{Offset: d.pos, Reason: fmt.Sprintf("unexpected control byte 0x%02X", b)}
		}
		if err != nil {
			return nil, err
		}
	}
	d.flushText()
	return d.ops, nil
}

func (d *decoder) reset() {
	d.style = escpos.DefaultStyle(escpos.CharsetPC437)
	d.charset, _ = escpos.LookupCharset(escpos.CharsetPC437)
}

func (d *decoder) flushText() {
	if len(d.text) == 0 {
		return
	}
	d.ops = append(d.ops, Text{Text: d.charset.Decode(d.text), Style: d.style})
	d.text = d.text[:0]
}

// take returns the n bytes following the command prefix of length skip
func (d *decoder) take(skip, n int) ([]byte, error) {
	start := d.pos + skip
	if start+n > len(d.data) {
		return nil, &DecodeError{Offset: d.pos, Reason: "truncated command"}
	}
	d.pos = start + n
	return d.data[start : start+n], nil
}

func (d *decoder) esc() error {
	at := d.pos
	cmd, err := d.take(1, 1)
	if err != nil {
		return err
	}
	d.pos = at

	switch cmd[0] {
	case '@':
		d.pos += 2
		d.reset()
		d.ops = append(d.ops, Initialize{})
	case 'E':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.style.Bold = p[0]&1 == 1
	case '-':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.style.Underline = p[0]&3 != 0
	case 'a':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.style.Align = escpos.Align(p[0] % 3)
	case 't':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		cs, ok := escpos.CharsetByTable(p[0])
		if !ok {
			return &DecodeError{Offset: at, Reason: fmt.Sprintf("unknown character table %d", p[0])}
		}
		d.charset = cs
		d.style.Charset = cs.Name
	case 'd':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.ops = append(d.ops, Feed{Lines: int(p[0])})
	case 'p':
		if _, err := d.take(2, 3); err != nil {
			return err
		}
		d.ops = append(d.ops, Drawer{})
	default:
		return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported command ESC 0x%02X", cmd[0])}
	}
	return nil
}

func (d *decoder) gs() error {
	at := d.pos
	cmd, err := d.take(1, 1)
	if err != nil {
		return err
	}
	d.pos = at

	switch cmd[0] {
	case '!':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.style.Width = int(p[0]>>4) & 7
		d.style.Height = int(p[0]) & 7
	case 'V':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		m := p[0]
		if m == 65 || m == 66 {
			// function B carries a feed amount
			if _, err := d.take(0, 1); err != nil {
				return err
			}
		}
		d.ops = append(d.ops, Cut{Partial: m == 1 || m == 49 || m == 66})
	case 'H':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.barcode.HRI = escpos.HRIPosition(p[0] & 3)
	case 'f':
		if _, err := d.take(2, 1); err != nil {
			return err
		}
	case 'h':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.barcode.Height = int(p[0])
	case 'w':
		p, err := d.take(2, 1)
		if err != nil {
			return err
		}
		d.barcode.Width = int(p[0])
	case 'k':
		return d.barcodeData(at)
	case '(':
		return d.function(at)
	default:
		return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported command GS 0x%02X", cmd[0])}
	}
	return nil
}

func (d *decoder) barcodeData(at int) error {
	p, err := d.take(2, 1)
	if err != nil {
		return err
	}
	sym, ok := symbologyByCode[p[0]]
	if !ok {
		return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported barcode system %d", p[0])}
	}
	n, err := d.take(0, 1)
	if err != nil {
		return err
	}
	payload, err := d.take(0, int(n[0]))
	if err != nil {
		return err
	}
	bc := d.barcode
	bc.Symbology = sym
	bc.Payload = string(payload)
	bc.Align = d.style.Align
	d.ops = append(d.ops, bc)
	return nil
}

// function handles the GS ( k and GS ( L families
func (d *decoder) function(at int) error {
	head, err := d.take(2, 3)
	if err != nil {
		return err
	}
	family := head[0]
	size := int(head[1]) | int(head[2])<<8
	body, err := d.take(0, size)
	if err != nil {
		return err
	}

	switch family {
	case 'k':
		return d.qrFunction(at, body)
	case 'L':
		return d.graphicsFunction(at, body)
	}
	return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported function GS ( 0x%02X", family)}
}

func (d *decoder) qrFunction(at int, body []byte) error {
	if len(body) < 2 || body[0] != 49 {
		return &DecodeError{Offset: at, Reason: "unsupported 2D symbol"}
	}
	args := body[2:]
	switch body[1] {
	case 65:
		if len(args) < 1 {
			return &DecodeError{Offset: at, Reason: "missing QR model"}
		}
		d.qr.Model = int(args[0]) - 48
	case 67:
		if len(args) < 1 {
			return &DecodeError{Offset: at, Reason: "missing QR cell size"}
		}
		d.qr.CellSize = int(args[0])
	case 69:
		if len(args) < 1 {
			return &DecodeError{Offset: at, Reason: "missing QR error correction"}
		}
		d.qr.Correction = escpos.QRLevel((args[0] - 48) & 3)
	case 80:
		if len(args) < 1 {
			return &DecodeError{Offset: at, Reason: "missing QR data"}
		}
		d.qr.Payload = string(args[1:])
	case 81:
		qr := d.qr
		qr.Align = d.style.Align
		d.ops = append(d.ops, qr)
	default:
		return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported QR function %d", body[1])}
	}
	return nil
}

func (d *decoder) graphicsFunction(at int, body []byte) error {
	if len(body) < 2 || body[0] != 48 {
		return &DecodeError{Offset: at, Reason: "unsupported graphics command"}
	}
	switch body[1] {
	case 113:
		// a fn tone bx by c xL xH yL yH d...
		if len(body) < 10 {
			return &DecodeError{Offset: at, Reason: "short column graphic header"}
		}
		w := int(body[6]) | int(body[7])<<8
		h := int(body[8]) | int(body[9])<<8
		data := body[10:]
		bands := (h + 7) / 8
		if len(data) != w*bands {
			return &DecodeError{Offset: at, Reason: fmt.Sprintf("column graphic has %d bytes, want %d", len(data), w*bands)}
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		for i := range img.Pix {
			img.Pix[i] = 0xFF
		}
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				if data[x*bands+y/8]&(0x80>>uint(y%8)) != 0 {
					img.SetGray(x, y, color.Gray{Y: 0})
				}
			}
		}
		d.graphic = img
	case 50:
		if d.graphic == nil {
			return &DecodeError{Offset: at, Reason: "print without stored graphic"}
		}
		d.ops = append(d.ops, Graphic{Image: d.graphic, Align: d.style.Align})
		d.graphic = nil
	default:
		return &DecodeError{Offset: at, Reason: fmt.Sprintf("unsupported graphics function %d", body[1])}
	}
	return nil
}
