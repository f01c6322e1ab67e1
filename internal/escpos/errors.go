package escpos

import "fmt"

// EncodingError reports an invalid style or text parameter.
// The buffer is never modified when one is returned.
type EncodingError struct {
	Op     string
	Field  string
	Value  interface{}
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("escpos %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("escpos %s: invalid %s %v: %s", e.Op, e.Field, e.Value, e.Reason)
}

// PayloadError reports a barcode or QR payload that cannot be encoded
type PayloadError struct {
	Symbology string
	Length    int
	Limit     int
	Reason    string
}

func (e *PayloadError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("%s payload of %d bytes: %s (limit %d)", e.Symbology, e.Length, e.Reason, e.Limit)
	}
	return fmt.Sprintf("%s payload: %s", e.Symbology, e.Reason)
}

// ImageError reports bitmap dimensions the printer cannot take
type ImageError struct {
	Width    int
	Height   int
	MaxWidth int
	Reason   string
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %dx%d: %s", e.Width, e.Height, e.Reason)
}
