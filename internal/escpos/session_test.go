package escpos

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSetBold_Idempotent(t *testing.T) {
	once := NewSession(DefaultProfile())
	once.SetBold(true)

	twice := NewSession(DefaultProfile())
	twice.SetBold(true)
	twice.SetBold(true)

	if !bytes.Equal(once.Bytes(), twice.Bytes()) {
		t.Errorf("Expected identical buffers, got %v and %v", once.Bytes(), twice.Bytes())
	}
	if !bytes.Equal(twice.Bytes(), []byte{ESC, 'E', 1}) {
		t.Errorf("Expected ESC E 1, got %v", twice.Bytes())
	}
}

func TestStyleCalls_NoOpWhenActive(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.SetBold(false)
	s.SetUnderline(false)
	s.SetAlignment(AlignLeft)
	if err := s.SetTextSize(0, 0); err != nil {
		t.Fatalf("SetTextSize failed: %v", err)
	}
	if err := s.SetCharacterSet(CharsetPC437); err != nil {
		t.Fatalf("SetCharacterSet failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected no bytes for default style, got %v", s.Bytes())
	}
}

func TestStyleTransitions(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.SetUnderline(true)
	s.AlignCenter()
	if err := s.SetTextSize(1, 1); err != nil {
		t.Fatalf("SetTextSize failed: %v", err)
	}
	s.SetTextNormal()

	want := []byte{
		ESC, '-', 1,
		ESC, 'a', 1,
		GS, '!', 0x11,
		ESC, '-', 0,
		GS, '!', 0x00,
	}
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestSetTextSize_OutOfRange(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.SetBold(true)
	before := s.Bytes()

	err := s.SetTextSize(8, 0)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("Expected EncodingError, got %v", err)
	}
	if err := s.SetTextSize(0, -1); err == nil {
		t.Error("Expected error for negative height")
	}
	if !bytes.Equal(before, s.Bytes()) {
		t.Error("Expected buffer untouched after failed call")
	}
	if s.Style().Width != 0 || s.Style().Height != 0 {
		t.Errorf("Expected size unchanged, got %dx%d", s.Style().Width, s.Style().Height)
	}
}

func TestClear_NoStyleLeak(t *testing.T) {
	used := NewSession(DefaultProfile())
	used.SetBold(true)
	used.SetUnderline(true)
	used.AlignRight()
	_ = used.SetTextSize(2, 3)
	_ = used.SetCharacterSet(CharsetPC850)
	used.Println("previous job")
	used.Cut()

	used.Clear()
	used.Println("Hello")

	fresh := NewSession(DefaultProfile())
	fresh.Println("Hello")

	if !bytes.Equal(used.Bytes(), fresh.Bytes()) {
		t.Errorf("Expected %v after Clear, got %v", fresh.Bytes(), used.Bytes())
	}
	if used.Style() != fresh.Style() {
		t.Errorf("Expected default style after Clear, got %+v", used.Style())
	}
}

func TestClear_ProfileCharset(t *testing.T) {
	p := DefaultProfile()
	p.Charset = CharsetPC858

	s := NewSession(p)
	want := []byte{ESC, 't', 19}
	if !bytes.Equal(s.Bytes(), want) {
		t.Fatalf("Expected %v for a PC858 session, got %v", want, s.Bytes())
	}

	s.Println("x")
	s.Clear()
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v after Clear, got %v", want, s.Bytes())
	}
}

func TestInitialize(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.SetBold(true)
	s.Initialize()
	s.SetBold(true)

	want := []byte{ESC, 'E', 1, ESC, '@', ESC, 'E', 1}
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestPrintln_CodePage(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.Println("Café 日")

	want := []byte{'C', 'a', 'f', 0x82, ' ', '?', LF}
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestPrint_ControlCharacters(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.Print("a\x1bb\nc")

	want := []byte{'a', '?', 'b', LF, 'c'}
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestSetCharacterSet(t *testing.T) {
	s := NewSession(DefaultProfile())
	if err := s.SetCharacterSet("pc850_multilingual"); err != nil {
		t.Fatalf("SetCharacterSet failed: %v", err)
	}
	if err := s.SetCharacterSet(CharsetPC850); err != nil {
		t.Fatalf("SetCharacterSet failed: %v", err)
	}
	want := []byte{ESC, 't', 2}
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}

	err := s.SetCharacterSet("KLINGON")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("Expected EncodingError, got %v", err)
	}
	if !bytes.Equal(s.Bytes(), want) {
		t.Error("Expected buffer untouched after unknown charset")
	}
}

func TestDrawLine(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.DrawLine()

	want := strings.Repeat("=", 39) + "\n"
	if string(s.Bytes()) != want {
		t.Errorf("Expected %q, got %q", want, s.Bytes())
	}

	s.Clear()
	if err := s.SetLineCharacter('-'); err != nil {
		t.Fatalf("SetLineCharacter failed: %v", err)
	}
	s.DrawLine()
	if string(s.Bytes()) != strings.Repeat("-", 39)+"\n" {
		t.Errorf("Expected dashed line, got %q", s.Bytes())
	}
}

func TestLeftRight(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.LeftRight("ITEM", "PRICE")

	line := strings.TrimSuffix(string(s.Bytes()), "\n")
	if len(line) != 39 {
		t.Fatalf("Expected 39 characters, got %d: %q", len(line), line)
	}
	if !strings.HasPrefix(line, "ITEM ") || !strings.HasSuffix(line, " PRICE") {
		t.Errorf("Unexpected layout: %q", line)
	}

	s.Clear()
	s.LeftRight(strings.Repeat("L", 50), "$1.00")
	line = strings.TrimSuffix(string(s.Bytes()), "\n")
	if line != strings.Repeat("L", 33)+" $1.00" {
		t.Errorf("Expected truncated left side, got %q", line)
	}
}

func TestLeftRight_DoubleWidth(t *testing.T) {
	s := NewSession(DefaultProfile())
	_ = s.SetTextSize(1, 0)
	start := s.Len()
	s.LeftRight("TOTAL:", "$14.64")

	line := strings.TrimSuffix(string(s.Bytes()[start:]), "\n")
	if len(line) != 19 {
		t.Errorf("Expected 19 characters at double width, got %d", len(line))
	}
}

func TestCutAndDrawer(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.Cut()
	s.Println("after")
	s.PartialCut()
	s.OpenCashDrawer()

	want := []byte{GS, 'V', 0}
	want = append(want, []byte("after\n")...)
	want = append(want, GS, 'V', 1, ESC, 'p', 0, 25, 25)
	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestFeed(t *testing.T) {
	s := NewSession(DefaultProfile())
	if err := s.Feed(3); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := s.Feed(256); err == nil {
		t.Error("Expected error for 256 lines")
	}
	if !bytes.Equal(s.Bytes(), []byte{ESC, 'd', 3}) {
		t.Errorf("Expected ESC d 3, got %v", s.Bytes())
	}
}

func TestBytes_IsSnapshot(t *testing.T) {
	s := NewSession(DefaultProfile())
	s.Print("abc")
	snap := s.Bytes()
	s.Print("def")
	snap[0] = 'X'

	if string(snap) != "Xbc" {
		t.Errorf("Expected snapshot to stay at 3 bytes, got %q", snap)
	}
	if string(s.Bytes()) != "abcdef" {
		t.Errorf("Expected buffer unaffected by snapshot edits, got %q", s.Bytes())
	}
}

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("58mm")
	if err != nil {
		t.Fatalf("LookupProfile failed: %v", err)
	}
	if p.PrintWidth != 32 || p.MaxDots != 384 {
		t.Errorf("Unexpected 58mm profile: %+v", p)
	}
	if _, err := LookupProfile("35mm"); err == nil {
		t.Error("Expected error for unknown profile")
	}
	if NewSession(DefaultProfile().WithPrintWidth(42)).Width() != 42 {
		t.Error("Expected overridden print width")
	}
}
