package receiptformat

import (
	"path/filepath"
	"testing"
)

func TestValidate_ValidReceipt(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Name:    "Test Receipt",
		Commands: []Command{
			{Type: "text", Value: "Hello World"},
			{Type: "cut"},
		},
	}

	if err := Validate(receipt); err != nil {
		t.Errorf("Expected valid receipt, got error: %v", err)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	receipt := &Receipt{
		Commands: []Command{
			{Type: "text", Value: "Hello"},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for missing version")
	}
}

func TestValidate_InvalidVersion(t *testing.T) {
	receipt := &Receipt{
		Version: "2.0",
		Commands: []Command{
			{Type: "text", Value: "Hello"},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for invalid version")
	}
}

func TestValidate_NoCommands(t *testing.T) {
	receipt := &Receipt{
		Version:  "1.0",
		Commands: []Command{},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for no commands")
	}
}

func TestValidate_InvalidProfile(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Profile: "100mm",
		Commands: []Command{
			{Type: "text", Value: "Hello"},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for invalid profile")
	}
}

func TestValidate_ValidProfiles(t *testing.T) {
	for _, profile := range []string{"default", "58mm", "80mm"} {
		receipt := &Receipt{
			Version: "1.0",
			Profile: profile,
			Charset: "PC858_EURO",
			Commands: []Command{
				{Type: "text", Value: "Hello"},
			},
		}

		if err := Validate(receipt); err != nil {
			t.Errorf("Expected valid for profile %s, got error: %v", profile, err)
		}
	}
}

func TestValidate_Variables(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Variables: []Variable{
			{Let: "storeName", ValueType: "string", DefaultValue: "My Store"},
			{Let: "total", ValueType: "double", DefaultValue: 10.50},
		},
		Commands: []Command{
			{Type: "text", DynamicValue: "storeName"},
			{Type: "text", DynamicValue: "total"},
		},
	}

	if err := Validate(receipt); err != nil {
		t.Errorf("Expected valid receipt with variables, got error: %v", err)
	}
}

func TestValidate_DuplicateVariableName(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Variables: []Variable{
			{Let: "name", ValueType: "string"},
			{Let: "name", ValueType: "string"},
		},
		Commands: []Command{
			{Type: "text", Value: "Hello"},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for duplicate variable name")
	}
}

func TestValidate_UnknownVariable(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Commands: []Command{
			{Type: "text", DynamicValue: "unknownVar"},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for unknown variable")
	}
}

func TestValidate_VariableArray(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		VariableArrays: []VariableArray{
			{
				Name: "products",
				Schema: []VariableArrayField{
					{Field: "name", ValueType: "string"},
					{Field: "price", ValueType: "double"},
				},
			},
		},
		Commands: []Command{
			{
				Type:         "item",
				ArrayBinding: "products",
				LeftSide:     []Command{{Type: "text", ArrayField: "name"}},
				RightSide:    []Command{{Type: "text", ArrayField: "price"}},
			},
		},
	}

	if err := Validate(receipt); err != nil {
		t.Errorf("Expected valid receipt with variable array, got error: %v", err)
	}
}

func TestValidate_UnknownArray(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Commands: []Command{
			{
				Type:         "item",
				ArrayBinding: "unknownArray",
				LeftSide:     []Command{{Type: "text", Value: "Left"}},
				RightSide:    []Command{{Type: "text", Value: "Right"}},
			},
		},
	}

	err := Validate(receipt)
	if err == nil {
		t.Error("Expected error for unknown array")
	}
}

func TestValidate_TextCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid static text", Command{Type: "text", Value: "Hello"}, false},
		{"valid align left", Command{Type: "text", Value: "Hello", Align: "left"}, false},
		{"valid align center", Command{Type: "text", Value: "Hello", Align: "center"}, false},
		{"valid align right", Command{Type: "text", Value: "Hello", Align: "right"}, false},
		{"invalid align", Command{Type: "text", Value: "Hello", Align: "invalid"}, true},
		{"no value", Command{Type: "text"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := &Receipt{
				Version:  "1.0",
				Commands: []Command{tt.cmd},
			}

			err := Validate(receipt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ImageCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid with path", Command{Type: "image", Path: "/path/to/image.png"}, false},
		{"valid with base64", Command{Type: "image", Base64: "base64data"}, false},
		{"invalid - no path or base64", Command{Type: "image"}, true},
		{"invalid - both path and base64", Command{Type: "image", Path: "/path", Base64: "data"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := &Receipt{
				Version:  "1.0",
				Commands: []Command{tt.cmd},
			}

			err := Validate(receipt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BarcodeCommand(t *testing.T) {
	validReceipt := &Receipt{
		Version: "1.0",
		Commands: []Command{
			{Type: "barcode", Value: "123456", Format: "CODE128"},
		},
	}

	if err := Validate(validReceipt); err != nil {
		t.Errorf("Expected valid barcode, got error: %v", err)
	}

	invalidReceipt := &Receipt{
		Version: "1.0",
		Commands: []Command{
			{Type: "barcode", Format: "CODE128"}, // Missing value
		},
	}

	if err := Validate(invalidReceipt); err == nil {
		t.Error("Expected error for barcode without value")
	}
}

func TestParse_ValidJSON(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"name": "Test Receipt",
		"commands": [
			{"type": "text", "value": "Hello World"},
			{"type": "cut"}
		]
	}`

	receipt, err := Parse([]byte(jsonData))
	if err != nil {
		t.Errorf("Expected successful parse, got error: %v", err)
	}

	if receipt.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", receipt.Version)
	}
	if receipt.Name != "Test Receipt" {
		t.Errorf("Expected name 'Test Receipt', got %s", receipt.Name)
	}
	if len(receipt.Commands) != 2 {
		t.Errorf("Expected 2 commands, got %d", len(receipt.Commands))
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	jsonData := `{invalid json`

	_, err := Parse([]byte(jsonData))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestToJSON(t *testing.T) {
	receipt := &Receipt{
		Version: "1.0",
		Name:    "Test",
		Commands: []Command{
			{Type: "text", Value: "Hello"},
		},
	}

	jsonData, err := receipt.ToJSON()
	if err != nil {
		t.Errorf("Expected successful JSON conversion, got error: %v", err)
	}

	// Parse it back
	parsed, err := Parse(jsonData)
	if err != nil {
		t.Errorf("Expected successful re-parse, got error: %v", err)
	}

	if parsed.Name != receipt.Name {
		t.Errorf("Round-trip failed: expected name %s, got %s", receipt.Name, parsed.Name)
	}
}

func TestValidate_RowAndTable(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid row", Command{Type: "row", Columns: []Column{
			{Value: "Item", Width: 0.5, Bold: true},
			{Value: "Qty", Align: "CENTER", Width: 0.2},
			{Value: "Price", Align: "RIGHT", Width: 0.3},
		}}, false},
		{"row too wide", Command{Type: "row", Columns: []Column{
			{Value: "A", Width: 0.7},
			{Value: "B", Width: 0.7},
		}}, true},
		{"row missing width", Command{Type: "row", Columns: []Column{{Value: "A"}}}, true},
		{"table with empty cell", Command{Type: "table", Columns: []Column{{Value: "Total"}, {}, {Value: "$9.99"}}}, false},
		{"no columns", Command{Type: "table"}, true},
		{"bad column align", Command{Type: "table", Columns: []Column{{Value: "A", Align: "middle"}}}, true},
		{"array field without binding", Command{Type: "table", Columns: []Column{{ArrayField: "name"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := &Receipt{Version: "1.0", Commands: []Command{tt.cmd}}
			err := Validate(receipt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_SymbolCommands(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"barcode defaults", Command{Type: "barcode", Value: "DEMO123456"}, false},
		{"barcode named width", Command{Type: "barcode", Value: "DEMO123456", Width: "MEDIUM", Height: 60, Position: "below"}, false},
		{"barcode numeric width", Command{Type: "barcode", Value: "DEMO123456", Width: "6"}, false},
		{"barcode bad width", Command{Type: "barcode", Value: "DEMO123456", Width: "HUGE"}, true},
		{"barcode bad format", Command{Type: "barcode", Value: "123", Format: "ITF"}, true},
		{"barcode bad position", Command{Type: "barcode", Value: "123", Position: "left"}, true},
		{"qrcode", Command{Type: "qrcode", Value: "https://example.com", CellSize: 4, ErrorCorrection: "M", Model: 2}, false},
		{"qrcode bad level", Command{Type: "qrcode", Value: "x", ErrorCorrection: "Z"}, true},
		{"qrcode bad model", Command{Type: "qrcode", Value: "x", Model: 3}, true},
		{"qrcode no value", Command{Type: "qrcode"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := &Receipt{Version: "1.0", Commands: []Command{tt.cmd}}
			err := Validate(receipt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MiscCommands(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"feed", Command{Type: "feed", Lines: 3}, false},
		{"feed too far", Command{Type: "feed", Lines: 300}, true},
		{"divider", Command{Type: "divider", Char: "-"}, false},
		{"divider long char", Command{Type: "divider", Char: "--"}, true},
		{"charset", Command{Type: "charset", Value: "WPC1252"}, false},
		{"unknown charset", Command{Type: "charset", Value: "KOI8"}, true},
		{"text size", Command{Type: "text", Value: "Big", Size: 1}, false},
		{"text size too big", Command{Type: "text", Value: "Big", SizeWidth: 8}, true},
		{"bad weight", Command{Type: "text", Value: "x", Weight: "heavy"}, true},
		{"partial cut", Command{Type: "partial_cut"}, false},
		{"drawer", Command{Type: "drawer"}, false},
		{"folder", Command{Type: "folder", Commands: []Command{{Type: "text", Value: "inside"}}}, false},
		{"folder with bad child", Command{Type: "folder", Commands: []Command{{Type: "text"}}}, true},
		{"unknown", Command{Type: "box"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := &Receipt{Version: "1.0", Commands: []Command{tt.cmd}}
			err := Validate(receipt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveToFile(t *testing.T) {
	receipt := &Receipt{
		Version:  "1.0",
		Name:     "Saved",
		Profile:  "58mm",
		Commands: []Command{{Type: "text", Value: "Hello"}, {Type: "cut"}},
	}

	path := filepath.Join(t.TempDir(), "saved.receipt")
	if err := receipt.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if parsed.Profile != "58mm" || len(parsed.Commands) != 2 {
		t.Errorf("Unexpected receipt after reload: %+v", parsed)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.receipt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
