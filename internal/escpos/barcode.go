package escpos

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbology is a barcode encoding scheme
type Symbology string

const (
	CODE128 Symbology = "CODE128"
	CODE39  Symbology = "CODE39"
	EAN13   Symbology = "EAN13"
	EAN8    Symbology = "EAN8"
	UPCA    Symbology = "UPC_A"
)

// GS k function B symbology selectors
var symbologyCodes = map[Symbology]byte{
	UPCA:    65,
	EAN13:   67,
	EAN8:    68,
	CODE39:  69,
	CODE128: 73,
}

const code39Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ -.$/+%*"

// maxBarcodeLength is the limit of the one-byte GS k length prefix
const maxBarcodeLength = 255

// minCode128Length is a code set selector plus one data byte
const minCode128Length = 2

// HRIPosition places the human readable text of a barcode
type HRIPosition int

const (
	HRINone HRIPosition = iota
	HRIAbove
	HRIBelow
	HRIBoth
)

// BarcodeOptions controls symbol geometry. Zero values select defaults.
type BarcodeOptions struct {
	Symbology    Symbology
	Width        int // module width in dots, 2-6
	Height       int // bar height in dots, 1-255
	TextPosition HRIPosition
	FontB        bool
}

// Default barcode geometry
const (
	DefaultBarcodeWidth  = 3
	DefaultBarcodeHeight = 80
)

// ParseBarcodeWidth maps SMALL, MEDIUM and LARGE to module widths. A
// number from 2 to 6 is taken as-is.
func ParseBarcodeWidth(name string) (int, error) {
	switch strings.ToUpper(name) {
	case "SMALL":
		return 2, nil
	case "", "MEDIUM":
		return 3, nil
	case "LARGE":
		return 4, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 2 && n <= 6 {
		return n, nil
	}
	return 0, fmt.Errorf("invalid barcode width '%s' (must be SMALL, MEDIUM, LARGE or 2-6)", name)
}

// ParseSymbology accepts the names used in receipt templates
func ParseSymbology(name string) (Symbology, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "_")) {
	case "", "CODE128":
		return CODE128, nil
	case "CODE39":
		return CODE39, nil
	case "EAN13":
		return EAN13, nil
	case "EAN8":
		return EAN8, nil
	case "UPC_A", "UPCA":
		return UPCA, nil
	}
	return "", fmt.Errorf("unsupported barcode format '%s'", name)
}

func (o BarcodeOptions) withDefaults() BarcodeOptions {
	if o.Symbology == "" {
		o.Symbology = CODE128
	}
	if o.Width == 0 {
		o.Width = DefaultBarcodeWidth
	}
	if o.Height == 0 {
		o.Height = DefaultBarcodeHeight
	}
	return o
}

// EncodeBarcode appends HRI, height, width and GS k function B commands.
// The payload is sent unchanged after a length byte equal to its length.
func (s *Session) EncodeBarcode(payload string, opts BarcodeOptions) error {
	opts = opts.withDefaults()
	code, err := validateBarcode(payload, opts)
	if err != nil {
		return err
	}

	s.buf.Append(GS, 'H', byte(opts.TextPosition))
	s.buf.Append(GS, 'f', boolByte(opts.FontB))
	s.buf.Append(GS, 'h', byte(opts.Height))
	s.buf.Append(GS, 'w', byte(opts.Width))
	s.buf.Append(GS, 'k', code, byte(len(payload)))
	s.buf.AppendBytes([]byte(payload))
	return nil
}

// Code128 is EncodeBarcode with the CODE128 symbology
func (s *Session) Code128(payload string, opts BarcodeOptions) error {
	opts.Symbology = CODE128
	return s.EncodeBarcode(payload, opts)
}

func validateBarcode(payload string, opts BarcodeOptions) (byte, error) {
	code, ok := symbologyCodes[opts.Symbology]
	if !ok {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Reason: "unsupported symbology"}
	}
	if opts.Width < 2 || opts.Width > 6 {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Reason: fmt.Sprintf("module width %d outside 2-6", opts.Width)}
	}
	if opts.Height < 1 || opts.Height > 255 {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Reason: fmt.Sprintf("height %d outside 1-255", opts.Height)}
	}
	if opts.TextPosition < HRINone || opts.TextPosition > HRIBoth {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Reason: fmt.Sprintf("text position %d outside 0-3", opts.TextPosition)}
	}

	n := len(payload)
	if n == 0 {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Reason: "empty payload"}
	}
	if n > maxBarcodeLength {
		return 0, &PayloadError{Symbology: string(opts.Symbology), Length: n, Limit: maxBarcodeLength, Reason: "too long"}
	}

	switch opts.Symbology {
	case CODE128:
		// GS k 73 counts the code set selector as data
		if n < minCode128Length {
			return 0, &PayloadError{Symbology: string(opts.Symbology), Length: n, Reason: fmt.Sprintf("needs at least %d bytes", minCode128Length)}
		}
		for i := 0; i < n; i++ {
			if payload[i] > 127 {
				return 0, illegalByte(opts.Symbology, payload, i)
			}
		}
	case CODE39:
		for i := 0; i < n; i++ {
			if strings.IndexByte(code39Alphabet, payload[i]) < 0 {
				return 0, illegalByte(opts.Symbology, payload, i)
			}
		}
	case EAN13:
		return code, digits(opts.Symbology, payload, 12, 13)
	case EAN8:
		return code, digits(opts.Symbology, payload, 7, 8)
	case UPCA:
		return code, digits(opts.Symbology, payload, 11, 12)
	}
	return code, nil
}

func digits(sym Symbology, payload string, lo, hi int) error {
	if len(payload) < lo || len(payload) > hi {
		return &PayloadError{Symbology: string(sym), Length: len(payload), Reason: fmt.Sprintf("must be %d or %d digits", lo, hi)}
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] < '0' || payload[i] > '9' {
			return illegalByte(sym, payload, i)
		}
	}
	return nil
}

func illegalByte(sym Symbology, payload string, i int) error {
	return &PayloadError{
		Symbology: string(sym),
		Length:    len(payload),
		Reason:    fmt.Sprintf("illegal byte 0x%02X at offset %d", payload[i], i),
	}
}
