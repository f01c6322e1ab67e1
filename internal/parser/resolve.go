package parser

import (
	"fmt"

	"github.com/thereceipt/receipt-demo/pkg/receiptformat"
)

// expandArrayFields replaces arrayField references with values from one
// array entry. The command is copied; nested slices are never shared with
// the template.
func (p *Parser) expandArrayFields(cmd *receiptformat.Command, schema *receiptformat.VariableArray, data map[string]interface{}) *receiptformat.Command {
	expanded := *cmd
	expanded.ArrayBinding = ""

	if expanded.ArrayField != "" {
		if value, ok := p.arrayValue(expanded.ArrayField, schema, data); ok {
			expanded.Value = value
			expanded.ArrayField = ""
		}
	}

	if len(expanded.Columns) > 0 {
		cols := make([]receiptformat.Column, len(expanded.Columns))
		copy(cols, expanded.Columns)
		for i := range cols {
			if cols[i].ArrayField == "" {
				continue
			}
			if value, ok := p.arrayValue(cols[i].ArrayField, schema, data); ok {
				cols[i].Value = value
				cols[i].ArrayField = ""
			}
		}
		expanded.Columns = cols
	}

	expanded.LeftSide = p.expandAll(expanded.LeftSide, schema, data)
	expanded.RightSide = p.expandAll(expanded.RightSide, schema, data)
	expanded.Commands = p.expandAll(expanded.Commands, schema, data)

	return &expanded
}

func (p *Parser) expandAll(cmds []receiptformat.Command, schema *receiptformat.VariableArray, data map[string]interface{}) []receiptformat.Command {
	if len(cmds) == 0 {
		return cmds
	}
	out := make([]receiptformat.Command, len(cmds))
	for i := range cmds {
		out[i] = *p.expandArrayFields(&cmds[i], schema, data)
	}
	return out
}

func (p *Parser) arrayValue(field string, schema *receiptformat.VariableArray, data map[string]interface{}) (string, bool) {
	for i := range schema.Schema {
		def := &schema.Schema[i]
		if def.Field != field {
			continue
		}
		value := data[field]
		if value == nil {
			value = def.DefaultValue
		}
		return p.formatValue(value, def.ValueType, def.Prefix, def.Suffix), true
	}
	return "", false
}

// resolveCommand replaces dynamicValue references with variable data
func (p *Parser) resolveCommand(cmd *receiptformat.Command) *receiptformat.Command {
	resolved := *cmd

	if resolved.DynamicValue != "" {
		if value, ok := p.variableValue(resolved.DynamicValue); ok {
			resolved.Value = value
			resolved.DynamicValue = ""
		}
	}

	if len(resolved.Columns) > 0 {
		cols := make([]receiptformat.Column, len(resolved.Columns))
		copy(cols, resolved.Columns)
		for i := range cols {
			if cols[i].DynamicValue == "" {
				continue
			}
			if value, ok := p.variableValue(cols[i].DynamicValue); ok {
				cols[i].Value = value
				cols[i].DynamicValue = ""
			}
		}
		resolved.Columns = cols
	}

	resolved.LeftSide = p.resolveAll(resolved.LeftSide)
	resolved.RightSide = p.resolveAll(resolved.RightSide)
	// folder children are resolved when they are executed

	return &resolved
}

func (p *Parser) resolveAll(cmds []receiptformat.Command) []receiptformat.Command {
	if len(cmds) == 0 {
		return cmds
	}
	out := make([]receiptformat.Command, len(cmds))
	for i := range cmds {
		out[i] = *p.resolveCommand(&cmds[i])
	}
	return out
}

func (p *Parser) variableValue(name string) (string, bool) {
	for i := range p.receipt.Variables {
		def := &p.receipt.Variables[i]
		if def.Let != name {
			continue
		}
		value := p.variableData[name]
		if value == nil {
			value = def.DefaultValue
		}
		return p.formatValue(value, def.ValueType, def.Prefix, def.Suffix), true
	}
	return "", false
}

// formatValue renders a variable with its prefix and suffix. Doubles are
// printed with two decimals, as prices are.
func (p *Parser) formatValue(value interface{}, valueType string, prefix string, suffix string) string {
	if value == nil {
		return ""
	}

	if valueType == "double" {
		switch v := value.(type) {
		case float64:
			return fmt.Sprintf("%s%.2f%s", prefix, v, suffix)
		case float32:
			return fmt.Sprintf("%s%.2f%s", prefix, v, suffix)
		case int:
			return fmt.Sprintf("%s%.2f%s", prefix, float64(v), suffix)
		}
	}

	return fmt.Sprintf("%s%v%s", prefix, value, suffix)
}
