package escpos

import (
	"fmt"
	"strings"
)

// Align is a horizontal justification
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "CENTER"
	case AlignRight:
		return "RIGHT"
	default:
		return "LEFT"
	}
}

// ParseAlign accepts LEFT, CENTER or RIGHT in any case. Empty means LEFT.
func ParseAlign(s string) (Align, error) {
	switch strings.ToUpper(s) {
	case "", "LEFT":
		return AlignLeft, nil
	case "CENTER", "CENTRE":
		return AlignCenter, nil
	case "RIGHT":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("invalid alignment '%s' (must be LEFT, CENTER or RIGHT)", s)
}

// Style is the text mode last emitted to the printer
type Style struct {
	Bold      bool
	Underline bool
	Width     int // horizontal magnification 0-7
	Height    int // vertical magnification 0-7
	Align     Align
	Charset   string
}

// DefaultStyle is the state a printer is in after ESC @
func DefaultStyle(charset string) Style {
	return Style{Align: AlignLeft, Charset: charset}
}
