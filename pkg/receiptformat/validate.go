package receiptformat

import (
	"fmt"

	"github.com/thereceipt/receipt-demo/internal/escpos"
)

// Validate validates a Receipt structure
func Validate(r *Receipt) error {
	if r.Version == "" {
		return fmt.Errorf("version is required")
	}
	if r.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected 1.0)", r.Version)
	}

	if r.Profile != "" {
		if _, err := escpos.LookupProfile(r.Profile); err != nil {
			return fmt.Errorf("invalid profile: %s (must be one of %v)", r.Profile, escpos.ProfileNames())
		}
	}
	if r.Charset != "" {
		if _, err := escpos.LookupCharset(r.Charset); err != nil {
			return fmt.Errorf("invalid charset: %w", err)
		}
	}

	variableNames := make(map[string]bool)
	for i, v := range r.Variables {
		if v.Let == "" {
			return fmt.Errorf("variable[%d]: 'let' is required", i)
		}
		if variableNames[v.Let] {
			return fmt.Errorf("variable[%d]: duplicate variable name '%s'", i, v.Let)
		}
		variableNames[v.Let] = true

		if err := validateValueType(v.ValueType); err != nil {
			return fmt.Errorf("variable[%d] '%s': %w", i, v.Let, err)
		}
	}

	arrayNames := make(map[string]bool)
	for i, arr := range r.VariableArrays {
		if arr.Name == "" {
			return fmt.Errorf("variableArray[%d]: 'name' is required", i)
		}
		if arrayNames[arr.Name] {
			return fmt.Errorf("variableArray[%d]: duplicate array name '%s'", i, arr.Name)
		}
		arrayNames[arr.Name] = true

		fieldNames := make(map[string]bool)
		for j, field := range arr.Schema {
			if field.Field == "" {
				return fmt.Errorf("variableArray[%d] '%s' field[%d]: 'field' is required", i, arr.Name, j)
			}
			if fieldNames[field.Field] {
				return fmt.Errorf("variableArray[%d] '%s' field[%d]: duplicate field name '%s'", i, arr.Name, j, field.Field)
			}
			fieldNames[field.Field] = true

			if err := validateValueType(field.ValueType); err != nil {
				return fmt.Errorf("variableArray[%d] '%s' field[%d] '%s': %w", i, arr.Name, j, field.Field, err)
			}
		}
	}

	if len(r.Commands) == 0 {
		return fmt.Errorf("at least one command is required")
	}

	v := &validator{variables: variableNames, arrays: arrayNames}
	for i := range r.Commands {
		if err := v.command(&r.Commands[i], ""); err != nil {
			return fmt.Errorf("command[%d]: %w", i, err)
		}
	}

	return nil
}

func validateValueType(vt string) error {
	switch vt {
	case "string", "number", "double", "boolean":
		return nil
	}
	return fmt.Errorf("invalid valueType '%s' (must be string, number, double, or boolean)", vt)
}

type validator struct {
	variables map[string]bool
	arrays    map[string]bool
}

// command validates cmd. binding is the array bound by an enclosing command.
func (v *validator) command(cmd *Command, binding string) error {
	if cmd.Type == "" {
		return fmt.Errorf("command type is required")
	}

	if cmd.ArrayBinding != "" {
		if !v.arrays[cmd.ArrayBinding] {
			return fmt.Errorf("unknown array '%s' in arrayBinding", cmd.ArrayBinding)
		}
		binding = cmd.ArrayBinding
	}

	if cmd.Align != "" {
		if _, err := escpos.ParseAlign(cmd.Align); err != nil {
			return err
		}
	}

	switch cmd.Type {
	case "text":
		return v.text(cmd, binding)
	case "item":
		return v.item(cmd, binding)
	case "row", "table":
		return v.columns(cmd, binding)
	case "image":
		return validateImageCommand(cmd)
	case "barcode":
		return v.barcode(cmd, binding)
	case "qrcode":
		return v.qrcode(cmd, binding)
	case "feed":
		if cmd.Lines < 0 || cmd.Lines > 255 {
			return fmt.Errorf("feed lines must be 0-255, got %d", cmd.Lines)
		}
		return nil
	case "divider":
		if len([]rune(cmd.Char)) > 1 {
			return fmt.Errorf("divider char must be a single character")
		}
		return nil
	case "charset":
		if _, err := escpos.LookupCharset(cmd.Value); err != nil {
			return err
		}
		return nil
	case "folder":
		for i := range cmd.Commands {
			if err := v.command(&cmd.Commands[i], binding); err != nil {
				return fmt.Errorf("commands[%d]: %w", i, err)
			}
		}
		return nil
	case "cut", "partial_cut", "drawer", "align", "init":
		return nil
	default:
		return fmt.Errorf("unknown command type: %s", cmd.Type)
	}
}

// source checks that exactly one of value, dynamicValue and arrayField is set
func (v *validator) source(kind, value, dynamic, field, binding string) error {
	count := 0
	if value != "" {
		count++
	}
	if dynamic != "" {
		count++
		if !v.variables[dynamic] {
			return fmt.Errorf("unknown variable '%s' in dynamicValue", dynamic)
		}
	}
	if field != "" {
		count++
		if binding == "" {
			return fmt.Errorf("arrayField '%s' used without arrayBinding", field)
		}
	}

	if count == 0 {
		return fmt.Errorf("%s must have value, dynamicValue, or arrayField", kind)
	}
	if count > 1 {
		return fmt.Errorf("%s cannot have multiple of: value, dynamicValue, arrayField", kind)
	}
	return nil
}

func (v *validator) text(cmd *Command, binding string) error {
	if err := v.source("text command", cmd.Value, cmd.DynamicValue, cmd.ArrayField, binding); err != nil {
		return err
	}
	for _, size := range []int{cmd.Size, cmd.SizeWidth, cmd.SizeHeight} {
		if size < 0 || size > 7 {
			return fmt.Errorf("text size must be 0-7, got %d", size)
		}
	}
	switch cmd.Weight {
	case "", "normal", "bold":
	default:
		return fmt.Errorf("invalid weight '%s' (must be normal or bold)", cmd.Weight)
	}
	return nil
}

func (v *validator) item(cmd *Command, binding string) error {
	if len(cmd.LeftSide) == 0 {
		return fmt.Errorf("item command requires left_side")
	}
	if len(cmd.RightSide) == 0 {
		return fmt.Errorf("item command requires right_side")
	}

	for i := range cmd.LeftSide {
		if err := v.command(&cmd.LeftSide[i], binding); err != nil {
			return fmt.Errorf("left_side[%d]: %w", i, err)
		}
	}
	for i := range cmd.RightSide {
		if err := v.command(&cmd.RightSide[i], binding); err != nil {
			return fmt.Errorf("right_side[%d]: %w", i, err)
		}
	}
	return nil
}

func (v *validator) columns(cmd *Command, binding string) error {
	if len(cmd.Columns) == 0 {
		return fmt.Errorf("%s command requires columns", cmd.Type)
	}

	total := 0.0
	for i, col := range cmd.Columns {
		// empty cells are allowed in tables
		if col.Value != "" || col.DynamicValue != "" || col.ArrayField != "" {
			if err := v.source("column", col.Value, col.DynamicValue, col.ArrayField, binding); err != nil {
				return fmt.Errorf("columns[%d]: %w", i, err)
			}
		}
		if col.Align != "" {
			if _, err := escpos.ParseAlign(col.Align); err != nil {
				return fmt.Errorf("columns[%d]: %w", i, err)
			}
		}
		if cmd.Type == "row" {
			if col.Width <= 0 || col.Width > 1 {
				return fmt.Errorf("columns[%d]: width must be in (0, 1], got %g", i, col.Width)
			}
			total += col.Width
		}
	}
	if total > 1+1e-9 {
		return fmt.Errorf("column widths sum to %g, more than the line", total)
	}
	return nil
}

func validateImageCommand(cmd *Command) error {
	if cmd.Path == "" && cmd.Base64 == "" {
		return fmt.Errorf("image command requires either path or base64")
	}
	if cmd.Path != "" && cmd.Base64 != "" {
		return fmt.Errorf("image command cannot have both path and base64")
	}
	if cmd.Threshold < 0 || cmd.Threshold > 255 {
		return fmt.Errorf("image threshold must be 0-255, got %d", cmd.Threshold)
	}
	return nil
}

func (v *validator) barcode(cmd *Command, binding string) error {
	if err := v.source("barcode command", cmd.Value, cmd.DynamicValue, cmd.ArrayField, binding); err != nil {
		return err
	}
	if _, err := escpos.ParseSymbology(cmd.Format); err != nil {
		return err
	}
	if _, err := escpos.ParseBarcodeWidth(cmd.Width); err != nil {
		return err
	}
	if cmd.Height < 0 || cmd.Height > 255 {
		return fmt.Errorf("barcode height must be 1-255, got %d", cmd.Height)
	}
	if _, err := ParseHRIPosition(cmd.Position); err != nil {
		return err
	}
	return nil
}

func (v *validator) qrcode(cmd *Command, binding string) error {
	if err := v.source("qrcode command", cmd.Value, cmd.DynamicValue, cmd.ArrayField, binding); err != nil {
		return err
	}
	if _, err := escpos.ParseQRLevel(cmd.ErrorCorrection); err != nil {
		return err
	}
	if cmd.CellSize < 0 || cmd.CellSize > 16 {
		return fmt.Errorf("qrcode cell_size must be 1-16, got %d", cmd.CellSize)
	}
	if cmd.Model != 0 && cmd.Model != 1 && cmd.Model != 2 {
		return fmt.Errorf("qrcode model must be 1 or 2, got %d", cmd.Model)
	}
	return nil
}

// ParseHRIPosition maps a barcode position name to its HRI setting
func ParseHRIPosition(s string) (escpos.HRIPosition, error) {
	switch s {
	case "", "none":
		return escpos.HRINone, nil
	case "above":
		return escpos.HRIAbove, nil
	case "below":
		return escpos.HRIBelow, nil
	case "both":
		return escpos.HRIBoth, nil
	}
	return escpos.HRINone, fmt.Errorf("invalid barcode position '%s' (must be none, above, below or both)", s)
}
