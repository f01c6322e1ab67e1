// Package escpos builds ESC/POS command streams for thermal receipt printers.
package escpos

// ESC/POS prefixes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	FS  byte = 0x1C
	DLE byte = 0x10
	LF  byte = 0x0A
)

var (
	cmdInitialize   = []byte{ESC, '@'}
	cmdFullCut      = []byte{GS, 'V', 0}
	cmdPartialCut   = []byte{GS, 'V', 1}
	cmdDrawerKick   = []byte{ESC, 'p', 0, 25, 25}
	cmdQRPrint      = []byte{GS, '(', 'k', 3, 0, 49, 81, 48}
	cmdGraphicsDraw = []byte{GS, '(', 'L', 2, 0, 48, 50}
)

// InitializeCommand returns the printer reset sequence (ESC @).
func InitializeCommand() []byte {
	return append([]byte(nil), cmdInitialize...)
}

func boolByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}

// lowHigh splits n into little-endian bytes.
func lowHigh(n, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = byte(n & 0xFF)
		n >>= 8
	}
	return out
}
