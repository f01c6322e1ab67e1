package escpos

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeBarcode_Code128(t *testing.T) {
	s := NewSession(DefaultProfile())
	if err := s.EncodeBarcode("DEMO123456", BarcodeOptions{Symbology: CODE128, Height: 60}); err != nil {
		t.Fatalf("EncodeBarcode failed: %v", err)
	}

	out := s.Bytes()
	i := bytes.Index(out, []byte{GS, 'k', 73})
	if i < 0 {
		t.Fatalf("Expected GS k 73 in %v", out)
	}
	if out[i+3] != 10 {
		t.Errorf("Expected length prefix 10, got %d", out[i+3])
	}
	if string(out[i+4:]) != "DEMO123456" {
		t.Errorf("Expected payload unchanged, got %q", out[i+4:])
	}

	want := []byte{GS, 'H', 0, GS, 'f', 0, GS, 'h', 60, GS, 'w', 3, GS, 'k', 73, 10}
	want = append(want, []byte("DEMO123456")...)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected %v, got %v", want, out)
	}
}

func TestEncodeBarcode_Options(t *testing.T) {
	s := NewSession(DefaultProfile())
	width, _ := ParseBarcodeWidth("MEDIUM")
	err := s.Code128("TXN123456789", BarcodeOptions{Width: width, Height: 60, TextPosition: HRIBelow})
	if err != nil {
		t.Fatalf("Code128 failed: %v", err)
	}
	out := s.Bytes()
	if !bytes.HasPrefix(out, []byte{GS, 'H', 2, GS, 'f', 0, GS, 'h', 60, GS, 'w', 3}) {
		t.Errorf("Unexpected parameter commands: %v", out[:12])
	}
}

func TestEncodeBarcode_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		opts    BarcodeOptions
	}{
		{"empty", "", BarcodeOptions{}},
		{"code128 single byte", "A", BarcodeOptions{}},
		{"too long", strings.Repeat("A", 256), BarcodeOptions{}},
		{"non ascii", "CAFÉ", BarcodeOptions{}},
		{"code39 lowercase", "abc", BarcodeOptions{Symbology: CODE39}},
		{"ean13 letters", "40063813339X", BarcodeOptions{Symbology: EAN13}},
		{"ean8 length", "123", BarcodeOptions{Symbology: EAN8}},
		{"width", "ABC", BarcodeOptions{Width: 7}},
		{"height", "ABC", BarcodeOptions{Height: 256}},
		{"symbology", "ABC", BarcodeOptions{Symbology: "PDF417"}},
	}

	for _, tc := range cases {
		s := NewSession(DefaultProfile())
		s.Println("before")
		before := s.Bytes()

		err := s.EncodeBarcode(tc.payload, tc.opts)
		var payloadErr *PayloadError
		if !errors.As(err, &payloadErr) {
			t.Errorf("%s: expected PayloadError, got %v", tc.name, err)
		}
		if !bytes.Equal(before, s.Bytes()) {
			t.Errorf("%s: expected buffer untouched", tc.name)
		}
	}
}

func TestEncodeBarcode_MaxLength(t *testing.T) {
	s := NewSession(DefaultProfile())
	if err := s.EncodeBarcode(strings.Repeat("A", 255), BarcodeOptions{}); err != nil {
		t.Errorf("Expected 255 bytes to encode, got %v", err)
	}
}

func TestEncodeBarcode_Code128MinLength(t *testing.T) {
	s := NewSession(DefaultProfile())
	err := s.EncodeBarcode("7", BarcodeOptions{Symbology: CODE128})
	var payloadErr *PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("Expected PayloadError for a 1-byte CODE128 payload, got %v", err)
	}
	if payloadErr.Length != 1 {
		t.Errorf("Expected length 1 in error, got %d", payloadErr.Length)
	}
	if err := s.EncodeBarcode("{B", BarcodeOptions{Symbology: CODE128}); err != nil {
		t.Errorf("Expected 2-byte payload to encode, got %v", err)
	}
	if err := s.EncodeBarcode("7", BarcodeOptions{Symbology: CODE39}); err != nil {
		t.Errorf("Expected 1-byte CODE39 payload to encode, got %v", err)
	}
}

func TestEncodeBarcode_EAN13(t *testing.T) {
	s := NewSession(DefaultProfile())
	if err := s.EncodeBarcode("4006381333931", BarcodeOptions{Symbology: EAN13}); err != nil {
		t.Fatalf("EncodeBarcode failed: %v", err)
	}
	if !bytes.Contains(s.Bytes(), []byte{GS, 'k', 67, 13}) {
		t.Errorf("Expected GS k 67 13, got %v", s.Bytes())
	}
}

func TestParseSymbology(t *testing.T) {
	for name, want := range map[string]Symbology{"": CODE128, "code39": CODE39, "UPC-A": UPCA, "EAN8": EAN8} {
		got, err := ParseSymbology(name)
		if err != nil || got != want {
			t.Errorf("ParseSymbology(%q): expected %s, got %s (%v)", name, want, got, err)
		}
	}
	if _, err := ParseSymbology("ITF"); err == nil {
		t.Error("Expected error for unsupported symbology")
	}
	if _, err := ParseBarcodeWidth("HUGE"); err == nil {
		t.Error("Expected error for unknown width name")
	}
	if w, err := ParseBarcodeWidth("5"); err != nil || w != 5 {
		t.Errorf("Expected numeric width 5, got %d %v", w, err)
	}
	if _, err := ParseBarcodeWidth("7"); err == nil {
		t.Error("Expected error for width 7")
	}
}
