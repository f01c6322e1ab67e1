package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thereceipt/receipt-demo/pkg/receiptformat"
)

// composeCommands are the command types that may start a composed command
var composeCommands = []string{"text", "feed", "align", "cut", "partial_cut", "divider", "image", "barcode", "qrcode", "drawer"}

// composeReceipt turns arguments like `text:"Title" size:2 align:center feed:2 cut`
// into a receipt. A command starts with its type, optionally followed by a
// colon and its main value; the name:value arguments after it are its
// properties.
func composeReceipt(args []string) (*receiptformat.Receipt, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no compose arguments provided")
	}

	receipt := &receiptformat.Receipt{Version: "1.0", CreatedWith: "receipt-cli --compose"}
	var current *receiptformat.Command

	for _, arg := range args {
		if isCommandStart(arg) {
			if current != nil {
				receipt.Commands = append(receipt.Commands, *current)
			}
			cmd, err := parseCommandStart(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to parse command '%s': %w", arg, err)
			}
			current = cmd
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("unexpected argument '%s' (expected command start)", arg)
		}
		if err := setProperty(current, arg); err != nil {
			return nil, fmt.Errorf("failed to parse property '%s': %w", arg, err)
		}
	}
	if current != nil {
		receipt.Commands = append(receipt.Commands, *current)
	}

	if err := receiptformat.Validate(receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// writeComposed saves a composed receipt to a temporary file the caller removes
func writeComposed(r *receiptformat.Receipt) (string, error) {
	f, err := os.CreateTemp("", "receipt-composed-*.receipt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	f.Close()

	if err := r.SaveToFile(name); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	return name, nil
}

func isCommandStart(arg string) bool {
	name, _, _ := strings.Cut(arg, ":")
	for _, c := range composeCommands {
		if name == c {
			return true
		}
	}
	return false
}

func parseCommandStart(arg string) (*receiptformat.Command, error) {
	typ, value, hasValue := strings.Cut(arg, ":")
	cmd := &receiptformat.Command{Type: typ}
	if !hasValue {
		return cmd, nil
	}
	value = unquote(value)

	switch typ {
	case "feed":
		lines, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid feed lines value: %s", value)
		}
		cmd.Lines = lines
	case "image":
		cmd.Path = value
	case "align":
		cmd.Align = value
	case "divider":
		cmd.Char = value
	default:
		cmd.Value = value
	}
	return cmd, nil
}

func setProperty(cmd *receiptformat.Command, arg string) error {
	name, value, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("property must be in format 'name:value', got: %s", arg)
	}
	value = unquote(value)

	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", name, value)
		}
		return n, nil
	}
	atob := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s must be true or false, got %q", name, value)
		}
		return b, nil
	}

	var err error
	switch name {
	case "size":
		cmd.Size, err = atoi()
	case "size_width":
		cmd.SizeWidth, err = atoi()
	case "size_height":
		cmd.SizeHeight, err = atoi()
	case "bold":
		var bold bool
		if bold, err = atob(); bold {
			cmd.Weight = "bold"
		}
	case "weight":
		cmd.Weight = value
	case "underline":
		cmd.Underline, err = atob()
	case "align":
		cmd.Align = value
	case "lines":
		cmd.Lines, err = atoi()
	case "threshold":
		cmd.Threshold, err = atoi()
	case "dither":
		cmd.Dither, err = atob()
	case "char":
		cmd.Char = value
	case "format":
		cmd.Format = value
	case "height":
		cmd.Height, err = atoi()
	case "width":
		cmd.Width = value
	case "position":
		cmd.Position = value
	case "cell_size":
		cmd.CellSize, err = atoi()
	case "error_correction":
		cmd.ErrorCorrection = value
	case "model":
		cmd.Model, err = atoi()
	default:
		return fmt.Errorf("unknown property %q", name)
	}
	return err
}

func unquote(s string) string {
	return strings.Trim(s, `"'`)
}
