package escpos

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeQR_CommandGroup(t *testing.T) {
	s := NewSession(DefaultProfile())
	payload := "Small QR Code Test"
	if err := s.EncodeQR(payload, QROptions{CellSize: 2, Correction: QRLevelL, Model: 2}); err != nil {
		t.Fatalf("EncodeQR failed: %v", err)
	}

	var want []byte
	want = append(want, GS, '(', 'k', 4, 0, 49, 65, 50, 0)
	want = append(want, GS, '(', 'k', 3, 0, 49, 67, 2)
	want = append(want, GS, '(', 'k', 3, 0, 49, 69, 48)
	want = append(want, GS, '(', 'k', 21, 0, 49, 80, 48)
	want = append(want, []byte(payload)...)
	want = append(want, GS, '(', 'k', 3, 0, 49, 81, 48)

	if !bytes.Equal(s.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, s.Bytes())
	}
}

func TestEncodeQR_LengthPrefixLittleEndian(t *testing.T) {
	s := NewSession(DefaultProfile())
	payload := strings.Repeat("x", 1000)
	if err := s.EncodeQR(payload, QROptions{Correction: QRLevelL}); err != nil {
		t.Fatalf("EncodeQR failed: %v", err)
	}
	out := s.Bytes()
	i := bytes.Index(out, []byte{49, 80, 48})
	if i < 2 {
		t.Fatalf("Store command not found")
	}
	n := int(out[i-2]) | int(out[i-1])<<8
	if n != 1003 {
		t.Errorf("Expected length field 1003, got %d", n)
	}
}

func TestEncodeQR_CapacityBoundary(t *testing.T) {
	limit := QRCapacity(2, QRLevelH)
	if limit != 1273 {
		t.Fatalf("Expected model 2/H capacity 1273, got %d", limit)
	}

	s := NewSession(DefaultProfile())
	opts := QROptions{Model: 2, Correction: QRLevelH}

	if err := s.EncodeQR(strings.Repeat("a", limit-1), opts); err != nil {
		t.Errorf("Expected one byte under capacity to succeed, got %v", err)
	}
	if err := s.EncodeQR(strings.Repeat("a", limit), opts); err != nil {
		t.Errorf("Expected exact capacity to succeed, got %v", err)
	}

	before := s.Bytes()
	err := s.EncodeQR(strings.Repeat("a", limit+1), opts)
	var payloadErr *PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("Expected PayloadError one byte over capacity, got %v", err)
	}
	if payloadErr.Limit != limit || payloadErr.Length != limit+1 {
		t.Errorf("Unexpected error detail: %+v", payloadErr)
	}
	if !bytes.Equal(before, s.Bytes()) {
		t.Error("Expected buffer untouched after capacity failure")
	}
}

func TestQRCapacity_DecreasesWithCorrection(t *testing.T) {
	prev := QRCapacity(2, QRLevelL)
	if prev != 2953 {
		t.Errorf("Expected model 2/L capacity 2953, got %d", prev)
	}
	for _, level := range []QRLevel{QRLevelM, QRLevelQ, QRLevelH} {
		c := QRCapacity(2, level)
		if c >= prev {
			t.Errorf("Expected capacity for %s below %d, got %d", level, prev, c)
		}
		prev = c
	}
	if QRCapacity(1, QRLevelL) >= QRCapacity(2, QRLevelL) {
		t.Error("Expected model 1 capacity below model 2")
	}
	if QRCapacity(3, QRLevelL) != 0 {
		t.Error("Expected zero capacity for unknown model")
	}
}

func TestQRMinVersion(t *testing.T) {
	cases := []struct {
		n       int
		level   QRLevel
		version int
		ok      bool
	}{
		{17, QRLevelL, 1, true},
		{18, QRLevelL, 2, true},
		{7, QRLevelH, 1, true},
		{1273, QRLevelH, 40, true},
		{1274, QRLevelH, 0, false},
	}
	for _, tc := range cases {
		v, ok := QRMinVersion(tc.n, tc.level)
		if v != tc.version || ok != tc.ok {
			t.Errorf("QRMinVersion(%d, %s): expected (%d, %v), got (%d, %v)", tc.n, tc.level, tc.version, tc.ok, v, ok)
		}
	}
}

func TestEncodeQR_InvalidOptions(t *testing.T) {
	s := NewSession(DefaultProfile())
	for _, opts := range []QROptions{
		{CellSize: 17},
		{Model: 3},
		{Correction: QRLevel(9)},
	} {
		if err := s.EncodeQR("hello", opts); err == nil {
			t.Errorf("Expected error for %+v", opts)
		}
	}
	if err := s.EncodeQR("", QROptions{}); err == nil {
		t.Error("Expected error for empty payload")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", s.Len())
	}
}

func TestParseQRLevel(t *testing.T) {
	l, err := ParseQRLevel("q")
	if err != nil || l != QRLevelQ {
		t.Errorf("Expected Q, got %s (%v)", l, err)
	}
	if _, err := ParseQRLevel("X"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
