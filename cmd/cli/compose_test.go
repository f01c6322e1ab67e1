package main

import (
	"os"
	"strings"
	"testing"

	"github.com/thereceipt/receipt-demo/pkg/receiptformat"
)

func TestComposeReceipt(t *testing.T) {
	r, err := composeReceipt([]string{`text:"Title"`, "size:2", "bold:true", "align:center", "feed:2", "divider:-", "cut"})
	if err != nil {
		t.Fatalf("Failed to compose: %v", err)
	}
	if len(r.Commands) != 4 {
		t.Fatalf("Expected 4 commands, got %d", len(r.Commands))
	}

	text := r.Commands[0]
	if text.Type != "text" || text.Value != "Title" || text.Size != 2 || text.Weight != "bold" || text.Align != "center" {
		t.Errorf("Unexpected text command: %+v", text)
	}
	if r.Commands[1].Lines != 2 {
		t.Errorf("Expected feed of 2 lines, got %d", r.Commands[1].Lines)
	}
	if r.Commands[2].Char != "-" {
		t.Errorf("Expected divider char '-', got %q", r.Commands[2].Char)
	}
	if r.Commands[3].Type != "cut" {
		t.Errorf("Expected cut, got %s", r.Commands[3].Type)
	}
}

func TestComposeReceipt_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"property first", []string{"size:2"}},
		{"bad feed", []string{"feed:x"}},
		{"bad number", []string{"text:hi", "size:big"}},
		{"unknown property", []string{"text:hi", "color:red"}},
		{"property without value", []string{"text:hi", "bold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := composeReceipt(tt.args); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestWriteComposed(t *testing.T) {
	r, err := composeReceipt([]string{"text:hello", "cut"})
	if err != nil {
		t.Fatalf("Failed to compose: %v", err)
	}
	path, err := writeComposed(r)
	if err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	defer os.Remove(path)

	parsed, err := receiptformat.ParseFile(path)
	if err != nil {
		t.Fatalf("Failed to parse composed receipt: %v", err)
	}
	if len(parsed.Commands) != 2 || parsed.Commands[0].Value != "hello" {
		t.Errorf("Unexpected commands: %+v", parsed.Commands)
	}
}

func TestCommandLine(t *testing.T) {
	cmd, cleanup, err := commandLine([]string{"printer", "name", "abc", "Front Counter"})
	if err != nil {
		t.Fatal(err)
	}
	cleanup()
	if cmd != `printer name abc "Front Counter"` {
		t.Errorf("Expected quoted name, got %s", cmd)
	}

	cmd, cleanup, err = commandLine([]string{"print", "--compose", "text:hi", "cut"})
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if !strings.HasPrefix(cmd, "print ") || !strings.Contains(cmd, "receipt-composed-") {
		t.Errorf("Expected print of a composed file, got %s", cmd)
	}
}
