package escpos

import (
	"strings"
	"unicode/utf8"
)

// Session is one print job under construction. It tracks the text style
// last emitted so that repeated style requests cost no bytes. A Session is
// not safe for concurrent use; separate sessions share nothing.
type Session struct {
	profile  Profile
	buf      *Buffer
	style    Style
	charset  Charset
	lineChar rune
}

// NewSession creates an empty session for the given printer profile.
// An invalid profile falls back to DefaultProfile.
func NewSession(p Profile) *Session {
	if p.validate() != nil {
		p = DefaultProfile()
	}
	if p.LineChar == 0 {
		p.LineChar = '='
	}
	s := &Session{
		profile: p,
		buf:     NewBuffer(),
	}
	s.Clear()
	return s
}

// Clear discards pending bytes and restores the default style. Sessions
// must be cleared before they are reused for another job.
func (s *Session) Clear() {
	s.buf.Clear()
	s.resetStyle()
	s.lineChar = s.profile.LineChar
	if s.profile.Charset != CharsetPC437 {
		// printers power up on table 0
		_ = s.SetCharacterSet(s.profile.Charset)
	}
}

func (s *Session) resetStyle() {
	s.style = DefaultStyle(CharsetPC437)
	s.charset = charsets[CharsetPC437]
}

// Initialize emits ESC @, which resets the printer's own mode state
func (s *Session) Initialize() {
	s.buf.AppendBytes(cmdInitialize)
	s.resetStyle()
	if s.profile.Charset != CharsetPC437 {
		_ = s.SetCharacterSet(s.profile.Charset)
	}
}

// SetBold switches emphasized mode (ESC E n)
func (s *Session) SetBold(on bool) {
	if s.style.Bold == on {
		return
	}
	s.buf.Append(ESC, 'E', boolByte(on))
	s.style.Bold = on
}

// SetUnderline switches one-dot underline (ESC - n)
func (s *Session) SetUnderline(on bool) {
	if s.style.Underline == on {
		return
	}
	s.buf.Append(ESC, '-', boolByte(on))
	s.style.Underline = on
}

// SetAlignment sets justification (ESC a n)
func (s *Session) SetAlignment(a Align) {
	if a < AlignLeft || a > AlignRight {
		a = AlignLeft
	}
	if s.style.Align == a {
		return
	}
	s.buf.Append(ESC, 'a', byte(a))
	s.style.Align = a
}

// AlignLeft, AlignCenter and AlignRight are shorthands for SetAlignment
func (s *Session) AlignLeft()   { s.SetAlignment(AlignLeft) }
func (s *Session) AlignCenter() { s.SetAlignment(AlignCenter) }
func (s *Session) AlignRight()  { s.SetAlignment(AlignRight) }

// SetTextSize sets character magnification (GS ! n). 0 is normal size,
// 7 is eight times.
func (s *Session) SetTextSize(width, height int) error {
	if width < 0 || width > 7 {
		return &EncodingError{Op: "text size", Field: "width", Value: width, Reason: "must be 0-7"}
	}
	if height < 0 || height > 7 {
		return &EncodingError{Op: "text size", Field: "height", Value: height, Reason: "must be 0-7"}
	}
	if s.style.Width == width && s.style.Height == height {
		return nil
	}
	s.buf.Append(GS, '!', byte(width<<4|height))
	s.style.Width = width
	s.style.Height = height
	return nil
}

// SetCharacterSet selects the code page used for text (ESC t n)
func (s *Session) SetCharacterSet(name string) error {
	cs, err := LookupCharset(name)
	if err != nil {
		return err
	}
	if s.style.Charset == cs.Name {
		return nil
	}
	s.buf.Append(ESC, 't', cs.Table)
	s.style.Charset = cs.Name
	s.charset = cs
	return nil
}

// SetTextNormal turns off bold and underline and restores normal size
func (s *Session) SetTextNormal() {
	s.SetBold(false)
	s.SetUnderline(false)
	_ = s.SetTextSize(0, 0)
}

// SetLineCharacter changes the fill character used by DrawLine
func (s *Session) SetLineCharacter(r rune) error {
	if _, ok := s.charset.Map.EncodeRune(r); !ok || r < 0x20 {
		return &EncodingError{Op: "line character", Field: "character", Value: string(r), Reason: "not printable in " + s.charset.Name}
	}
	s.lineChar = r
	return nil
}

// LineCharacter returns the fill character used by DrawLine
func (s *Session) LineCharacter() rune {
	return s.lineChar
}

// Print appends text encoded in the active character set
func (s *Session) Print(text string) {
	s.buf.AppendBytes(s.charset.Encode(text))
}

// Println appends text followed by a line feed
func (s *Session) Println(text string) {
	s.Print(text)
	s.buf.Append(LF)
}

// NewLine appends a single line feed
func (s *Session) NewLine() {
	s.buf.Append(LF)
}

// Feed prints the buffer and feeds n lines (ESC d n)
func (s *Session) Feed(lines int) error {
	if lines < 0 || lines > 255 {
		return &EncodingError{Op: "feed", Field: "lines", Value: lines, Reason: "must be 0-255"}
	}
	s.buf.Append(ESC, 'd', byte(lines))
	return nil
}

// DrawLine fills one line with the line character
func (s *Session) DrawLine() {
	s.Println(strings.Repeat(string(s.lineChar), s.Width()))
}

// LeftRight prints left and right justified text on one line. The left
// text is truncated when both do not fit.
func (s *Session) LeftRight(left, right string) {
	width := s.Width()
	right = truncate(right, width)
	room := width - utf8.RuneCountInString(right) - 1
	if room < 0 {
		room = 0
	}
	left = truncate(left, room)
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	s.Println(left + strings.Repeat(" ", gap) + right)
}

// Cut fully separates the paper (GS V 0)
func (s *Session) Cut() {
	s.buf.AppendBytes(cmdFullCut)
}

// PartialCut cuts leaving a connecting strip (GS V 1)
func (s *Session) PartialCut() {
	s.buf.AppendBytes(cmdPartialCut)
}

// OpenCashDrawer pulses drawer pin 2 (ESC p 0 25 25)
func (s *Session) OpenCashDrawer() {
	s.buf.AppendBytes(cmdDrawerKick)
}

// Raw appends bytes without touching the tracked style
func (s *Session) Raw(p []byte) {
	s.buf.AppendBytes(p)
}

// Bytes returns a snapshot of the command stream
func (s *Session) Bytes() []byte {
	return s.buf.Snapshot()
}

// Len returns the number of buffered bytes
func (s *Session) Len() int {
	return s.buf.Len()
}

// Width returns characters per line at the current horizontal magnification
func (s *Session) Width() int {
	return s.profile.PrintWidth / (s.style.Width + 1)
}

// Style returns the current style state
func (s *Session) Style() Style {
	return s.style
}

// Profile returns the printer profile the session was created with
func (s *Session) Profile() Profile {
	return s.profile
}
