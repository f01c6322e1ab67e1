package escpos

import (
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Character set names accepted by SetCharacterSet
const (
	CharsetPC437   = "PC437_USA"
	CharsetPC850   = "PC850_MULTILINGUAL"
	CharsetPC860   = "PC860_PORTUGUESE"
	CharsetPC863   = "PC863_CANADIAN_FRENCH"
	CharsetPC865   = "PC865_NORDIC"
	CharsetWPC1252 = "WPC1252"
	CharsetPC866   = "PC866_CYRILLIC2"
	CharsetPC852   = "PC852_LATIN2"
	CharsetPC858   = "PC858_EURO"
)

// FallbackByte replaces runes the active code page cannot represent
const FallbackByte = '?'

// Charset couples an ESC t table number with its code page
type Charset struct {
	Name  string
	Table byte
	Map   *charmap.Charmap
}

var charsets = map[string]Charset{
	CharsetPC437:   {CharsetPC437, 0, charmap.CodePage437},
	CharsetPC850:   {CharsetPC850, 2, charmap.CodePage850},
	CharsetPC860:   {CharsetPC860, 3, charmap.CodePage860},
	CharsetPC863:   {CharsetPC863, 4, charmap.CodePage863},
	CharsetPC865:   {CharsetPC865, 5, charmap.CodePage865},
	CharsetWPC1252: {CharsetWPC1252, 16, charmap.Windows1252},
	CharsetPC866:   {CharsetPC866, 17, charmap.CodePage866},
	CharsetPC852:   {CharsetPC852, 18, charmap.CodePage852},
	CharsetPC858:   {CharsetPC858, 19, charmap.CodePage858},
}

// LookupCharset finds a character set by name, ignoring case
func LookupCharset(name string) (Charset, error) {
	cs, ok := charsets[strings.ToUpper(name)]
	if !ok {
		return Charset{}, &EncodingError{Op: "charset", Field: "character set", Value: name, Reason: "unsupported"}
	}
	return cs, nil
}

// CharsetByTable finds the character set selected by ESC t n
func CharsetByTable(n byte) (Charset, bool) {
	for _, cs := range charsets {
		if cs.Table == n {
			return cs, true
		}
	}
	return Charset{}, false
}

// CharsetNames lists the supported character sets
func CharsetNames() []string {
	names := make([]string, 0, len(charsets))
	for n := range charsets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Encode converts text to code page bytes. LF and TAB pass through,
// other control characters and unmappable runes become FallbackByte.
func (c Charset) Encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			out = append(out, byte(r))
		case r < 0x20 || r == 0x7F:
			out = append(out, FallbackByte)
		default:
			b, ok := c.Map.EncodeRune(r)
			if !ok {
				b = FallbackByte
			}
			out = append(out, b)
		}
	}
	return out
}

// Decode converts code page bytes back to text
func (c Charset) Decode(p []byte) string {
	var sb strings.Builder
	for _, b := range p {
		sb.WriteRune(c.Map.DecodeByte(b))
	}
	return sb.String()
}
