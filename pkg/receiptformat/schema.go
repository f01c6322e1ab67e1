// Package receiptformat defines the types for the .receipt file format
package receiptformat

// Receipt represents the root structure of a .receipt file
type Receipt struct {
	Version        string          `json:"version"`
	Name           string          `json:"name,omitempty"`
	Description    string          `json:"description,omitempty"`
	CreatedWith    string          `json:"created_with,omitempty"`
	Profile        string          `json:"profile,omitempty"` // "default", "58mm", "80mm"
	Charset        string          `json:"charset,omitempty"`
	Variables      []Variable      `json:"variables,omitempty"`
	VariableArrays []VariableArray `json:"variableArrays,omitempty"`
	Commands       []Command       `json:"commands"`
}

// Variable represents a template variable
type Variable struct {
	Let          string      `json:"let"`
	ValueType    string      `json:"valueType"` // string, number, double, boolean
	DefaultValue interface{} `json:"defaultValue,omitempty"`
	Prefix       string      `json:"prefix,omitempty"`
	Suffix       string      `json:"suffix,omitempty"`
	Description  string      `json:"description,omitempty"`
}

// VariableArray represents a repeatable data structure
type VariableArray struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Schema      []VariableArrayField `json:"schema"`
}

// VariableArrayField defines a field in a variable array
type VariableArrayField struct {
	Field        string      `json:"field"`
	ValueType    string      `json:"valueType"`
	DefaultValue interface{} `json:"defaultValue,omitempty"`
	Prefix       string      `json:"prefix,omitempty"`
	Suffix       string      `json:"suffix,omitempty"`
	Description  string      `json:"description,omitempty"`
}

// Command represents any receipt command
type Command struct {
	Type         string `json:"type"`
	ArrayBinding string `json:"arrayBinding,omitempty"`

	// Text command; value sources are shared by barcode, qrcode and columns
	Value        string `json:"value,omitempty"`
	DynamicValue string `json:"dynamicValue,omitempty"`
	ArrayField   string `json:"arrayField,omitempty"`
	Weight       string `json:"weight,omitempty"` // "bold" or "normal"
	Underline    bool   `json:"underline,omitempty"`
	Size         int    `json:"size,omitempty"` // magnification 0-7 in both directions
	SizeWidth    int    `json:"size_width,omitempty"`
	SizeHeight   int    `json:"size_height,omitempty"`
	Align        string `json:"align,omitempty"`
	NoNewline    bool   `json:"no_newline,omitempty"`

	// Image command
	Path      string `json:"path,omitempty"`
	Base64    string `json:"base64,omitempty"`
	Threshold int    `json:"threshold,omitempty"`
	Dither    bool   `json:"dither,omitempty"`

	// Feed command
	Lines int `json:"lines,omitempty"`

	// Item command: left and right text on one line
	LeftSide  []Command `json:"left_side,omitempty"`
	RightSide []Command `json:"right_side,omitempty"`

	// Row and table commands
	Columns []Column `json:"columns,omitempty"`

	// Divider command
	Char string `json:"char,omitempty"`

	// Barcode command
	Format   string `json:"format,omitempty"`
	Height   int    `json:"height,omitempty"`
	Width    string `json:"width,omitempty"` // 2-6 or SMALL, MEDIUM, LARGE
	Position string `json:"position,omitempty"`

	// QR code command
	CellSize        int    `json:"cell_size,omitempty"`
	ErrorCorrection string `json:"error_correction,omitempty"`
	Model           int    `json:"model,omitempty"`

	// Charset command uses Value

	// Folder command
	Commands []Command `json:"commands,omitempty"`
	Title    string    `json:"title,omitempty"`
}

// Column is one cell of a row or table command
type Column struct {
	Value        string  `json:"value,omitempty"`
	DynamicValue string  `json:"dynamicValue,omitempty"`
	ArrayField   string  `json:"arrayField,omitempty"`
	Align        string  `json:"align,omitempty"`
	Width        float64 `json:"width,omitempty"` // fraction of the line, rows only
	Bold         bool    `json:"bold,omitempty"`
}
