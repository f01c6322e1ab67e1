// Package parser compiles .receipt templates into ESC/POS sessions
package parser

import (
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/thereceipt/receipt-demo/internal/escpos"
	"github.com/thereceipt/receipt-demo/internal/imageload"
	"github.com/thereceipt/receipt-demo/pkg/receiptformat"
)

// Parser executes receipt commands with variable and array support
type Parser struct {
	receipt           *receiptformat.Receipt
	profile           escpos.Profile
	variableData      map[string]interface{}
	variableArrayData map[string][]map[string]interface{}
	dither            bool
}

// New creates a new parser. A profile named in the receipt replaces the
// given one; the receipt charset overrides the profile's.
func New(receipt *receiptformat.Receipt, profile escpos.Profile) (*Parser, error) {
	if receipt.Profile != "" {
		p, err := escpos.LookupProfile(receipt.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		profile = p
	}
	if receipt.Charset != "" {
		cs, err := escpos.LookupCharset(receipt.Charset)
		if err != nil {
			return nil, fmt.Errorf("failed to load charset: %w", err)
		}
		profile.Charset = cs.Name
	}

	return &Parser{
		receipt:           receipt,
		profile:           profile,
		variableData:      make(map[string]interface{}),
		variableArrayData: make(map[string][]map[string]interface{}),
	}, nil
}

// SetVariableData sets the data for template variables
func (p *Parser) SetVariableData(data map[string]interface{}) {
	p.variableData = data
}

// SetVariableArrayData sets the data for variable arrays
func (p *Parser) SetVariableArrayData(data map[string][]map[string]interface{}) {
	p.variableArrayData = data
}

// SetDither enables Floyd-Steinberg dithering for every image command
func (p *Parser) SetDither(on bool) {
	p.dither = on
}

// Execute compiles the receipt into a new session
func (p *Parser) Execute() (*escpos.Session, error) {
	s := escpos.NewSession(p.profile)
	s.Initialize()

	for i := range p.receipt.Commands {
		if err := p.executeCommand(s, &p.receipt.Commands[i]); err != nil {
			return nil, fmt.Errorf("command[%d] %s: %w", i, p.receipt.Commands[i].Type, err)
		}
	}

	return s, nil
}

func (p *Parser) executeCommand(s *escpos.Session, cmd *receiptformat.Command) error {
	if cmd.ArrayBinding != "" {
		return p.executeArrayBoundCommand(s, cmd)
	}

	resolved := p.resolveCommand(cmd)
	return p.emit(s, resolved)
}

func (p *Parser) executeArrayBoundCommand(s *escpos.Session, cmd *receiptformat.Command) error {
	arrayName := cmd.ArrayBinding

	var schema *receiptformat.VariableArray
	for i := range p.receipt.VariableArrays {
		if p.receipt.VariableArrays[i].Name == arrayName {
			schema = &p.receipt.VariableArrays[i]
			break
		}
	}
	if schema == nil {
		return fmt.Errorf("unknown variable array: %s", arrayName)
	}

	dataEntries := p.variableArrayData[arrayName]

	// If no data provided, use defaults for preview
	if len(dataEntries) == 0 {
		defaultEntry := make(map[string]interface{})
		for _, field := range schema.Schema {
			defaultEntry[field.Field] = field.DefaultValue
		}
		dataEntries = []map[string]interface{}{defaultEntry}
	}

	for _, entry := range dataEntries {
		expanded := p.expandArrayFields(cmd, schema, entry)
		if err := p.emit(s, p.resolveCommand(expanded)); err != nil {
			return err
		}
	}

	return nil
}

// emit appends the ESC/POS commands for one resolved command
func (p *Parser) emit(s *escpos.Session, cmd *receiptformat.Command) error {
	if cmd.Align != "" && cmd.Type != "row" && cmd.Type != "table" {
		align, err := escpos.ParseAlign(cmd.Align)
		if err != nil {
			return err
		}
		s.SetAlignment(align)
	}

	switch cmd.Type {
	case "text":
		return p.emitText(s, cmd)
	case "feed":
		lines := cmd.Lines
		if lines == 0 {
			lines = 1
		}
		return s.Feed(lines)
	case "divider":
		return emitDivider(s, cmd.Char)
	case "item":
		s.LeftRight(joinValues(cmd.LeftSide), joinValues(cmd.RightSide))
		return nil
	case "row":
		cols := make([]escpos.Column, len(cmd.Columns))
		for i, c := range cmd.Columns {
			align, err := escpos.ParseAlign(c.Align)
			if err != nil {
				return err
			}
			cols[i] = escpos.Column{Text: c.Value, Align: align, Width: c.Width, Bold: c.Bold}
		}
		return s.CustomRow(cols)
	case "table":
		cells := make([]string, len(cmd.Columns))
		for i, c := range cmd.Columns {
			cells[i] = c.Value
		}
		return s.Table(cells...)
	case "barcode":
		return emitBarcode(s, cmd)
	case "qrcode":
		return emitQR(s, cmd)
	case "image":
		return p.emitImage(s, cmd)
	case "cut":
		s.Cut()
	case "partial_cut":
		s.PartialCut()
	case "drawer":
		s.OpenCashDrawer()
	case "init":
		s.Initialize()
	case "align":
		// handled above
	case "charset":
		return s.SetCharacterSet(cmd.Value)
	case "folder":
		for i := range cmd.Commands {
			if err := p.executeCommand(s, &cmd.Commands[i]); err != nil {
				return fmt.Errorf("%s[%d]: %w", cmd.Title, i, err)
			}
		}
	default:
		return fmt.Errorf("unsupported command type: %s", cmd.Type)
	}
	return nil
}

func (p *Parser) emitText(s *escpos.Session, cmd *receiptformat.Command) error {
	w, h := cmd.Size, cmd.Size
	if cmd.SizeWidth != 0 {
		w = cmd.SizeWidth
	}
	if cmd.SizeHeight != 0 {
		h = cmd.SizeHeight
	}
	if err := s.SetTextSize(w, h); err != nil {
		return err
	}
	s.SetBold(cmd.Weight == "bold")
	s.SetUnderline(cmd.Underline)

	if cmd.NoNewline {
		s.Print(cmd.Value)
	} else {
		s.Println(cmd.Value)
	}
	s.SetTextNormal()
	return nil
}

func emitDivider(s *escpos.Session, char string) error {
	if char == "" {
		s.DrawLine()
		return nil
	}
	r, _ := utf8.DecodeRuneInString(char)
	prev := s.LineCharacter()
	if err := s.SetLineCharacter(r); err != nil {
		return err
	}
	s.DrawLine()
	return s.SetLineCharacter(prev)
}

func emitBarcode(s *escpos.Session, cmd *receiptformat.Command) error {
	sym, err := escpos.ParseSymbology(cmd.Format)
	if err != nil {
		return err
	}
	width, err := escpos.ParseBarcodeWidth(cmd.Width)
	if err != nil {
		return err
	}
	hri, err := receiptformat.ParseHRIPosition(cmd.Position)
	if err != nil {
		return err
	}
	return s.EncodeBarcode(cmd.Value, escpos.BarcodeOptions{
		Symbology:    sym,
		Width:        width,
		Height:       cmd.Height,
		TextPosition: hri,
	})
}

func emitQR(s *escpos.Session, cmd *receiptformat.Command) error {
	level, err := escpos.ParseQRLevel(cmd.ErrorCorrection)
	if err != nil {
		return err
	}
	return s.EncodeQR(cmd.Value, escpos.QROptions{
		CellSize:   cmd.CellSize,
		Correction: level,
		Model:      cmd.Model,
	})
}

func (p *Parser) emitImage(s *escpos.Session, cmd *receiptformat.Command) error {
	opts := imageload.Options{MaxWidth: s.Profile().MaxDots, Dither: p.dither || cmd.Dither}

	var img image.Image
	var err error
	if cmd.Base64 != "" {
		img, err = imageload.DecodeBase64(cmd.Base64, opts)
	} else {
		img, err = imageload.Load(cmd.Path, opts)
	}
	if err != nil {
		return err
	}
	return s.PrintImage(img, uint8(cmd.Threshold))
}

func joinValues(cmds []receiptformat.Command) string {
	parts := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if c.Value != "" {
			parts = append(parts, c.Value)
		}
	}
	return strings.Join(parts, " ")
}
