// Package demo holds the sample documents the CLI and TUI print
package demo

import (
	"fmt"
	"sort"
	"time"

	"github.com/thereceipt/receipt-demo/internal/escpos"
	"github.com/thereceipt/receipt-demo/internal/imageload"
)

// DefaultImagePath is the logo printed by the image demo
const DefaultImagePath = "./assets/logo.png"

// Env carries the inputs a document may depend on
type Env struct {
	Now       func() time.Time
	Text      string // body of the custom text document
	ImagePath string
	Dither    bool
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Document builds one demo into a cleared session
type Document struct {
	Name        string
	Title       string
	Description string
	build       func(s *escpos.Session, env Env) error
}

// Build clears s and writes the document into it
func (d Document) Build(s *escpos.Session, env Env) error {
	s.Clear()
	if err := d.build(s, env); err != nil {
		return fmt.Errorf("demo %s: %w", d.Name, err)
	}
	return nil
}

var documents = []Document{
	{"receipt", "Test Receipt", "Store receipt with items, totals, barcode and QR code", testReceipt},
	{"text", "Custom Text", "Prints the given text between a header and a timestamp", customText},
	{"connection", "Connection Test", "Short slip confirming the printer answers", connectionTest},
	{"barcode", "Barcode Demo", "CODE128 barcode and two QR code sizes", barcodeDemo},
	{"table", "Table Demo", "Equal-slot and custom-width tables", tableDemo},
	{"image", "Image Demo", "Raster logo, or a placeholder when the file is missing", imageDemo},
	{"partial-cut", "Partial Cut Demo", "Text on both sides of a partial cut", partialCutDemo},
	{"full-cut", "Full Cut Demo", "Feeds and fully cuts the paper", fullCutDemo},
	{"cut-compare", "Cutting Comparison", "A partial cut followed by a full cut", cuttingComparisonDemo},
	{"drawer", "Cash Drawer", "Pulses the cash drawer kick-out connector", cashDrawer},
}

// All returns every document in menu order
func All() []Document {
	out := make([]Document, len(documents))
	copy(out, documents)
	return out
}

// Lookup finds a document by name
func Lookup(name string) (Document, bool) {
	for _, d := range documents {
		if d.Name == name {
			return d, true
		}
	}
	return Document{}, false
}

// Names lists document names sorted alphabetically
func Names() []string {
	names := make([]string, len(documents))
	for i, d := range documents {
		names[i] = d.Name
	}
	sort.Strings(names)
	return names
}

func title(s *escpos.Session, text string) {
	s.AlignCenter()
	s.SetBold(true)
	s.Println(text)
	s.SetBold(false)
	s.DrawLine()
}

func newLines(s *escpos.Session, n int) {
	for i := 0; i < n; i++ {
		s.NewLine()
	}
}

func timeOfDay(t time.Time) string {
	return t.Format("3:04:05 PM")
}

func testReceipt(s *escpos.Session, env Env) error {
	now := env.now()

	s.AlignCenter()
	if err := s.SetTextSize(1, 1); err != nil {
		return err
	}
	s.SetBold(true)
	s.Println("THERMAL PRINTER DEMO")
	s.SetBold(false)
	_ = s.SetTextSize(0, 0)
	s.Println("123 Main Street")
	s.Println("Anytown, ST 12345")
	s.Println("Tel: (555) 123-4567")
	s.Println("www.mydemostore.com")
	s.DrawLine()

	s.AlignLeft()
	s.Println("Date: " + now.Format("1/2/2006"))
	s.Println("Time: " + timeOfDay(now))
	s.Println("Receipt #: 0001234")
	s.Println("Cashier: Demo User")
	s.Println("Terminal: 01")
	s.DrawLine()

	s.SetBold(true)
	s.LeftRight("ITEM", "PRICE")
	s.SetBold(false)
	s.LeftRight("Americano Coffee", "$3.50")
	s.LeftRight("Blueberry Muffin", "$2.99")
	s.LeftRight("Chocolate Croissant", "$4.25")
	s.LeftRight("Orange Juice", "$2.75")
	s.DrawLine()

	s.LeftRight("Subtotal:", "$13.49")
	s.LeftRight("Tax (8.5%):", "$1.15")
	s.SetBold(true)
	_ = s.SetTextSize(1, 0)
	s.LeftRight("TOTAL:", "$14.64")
	_ = s.SetTextSize(0, 0)
	s.SetBold(false)
	s.LeftRight("Cash Tendered:", "$20.00")
	s.LeftRight("Change:", "$5.36")
	s.DrawLine()

	s.AlignCenter()
	s.Println("Transaction ID:")
	if err := s.Code128("TXN123456789", escpos.BarcodeOptions{
		Width:        3,
		Height:       60,
		TextPosition: escpos.HRIBelow,
	}); err != nil {
		return err
	}
	s.NewLine()

	s.Println("Scan for receipt details:")
	if err := s.EncodeQR("Receipt: TXN123456789\nTotal: $14.64\nDate: "+now.Format("1/2/2006"), escpos.QROptions{
		CellSize:   3,
		Correction: escpos.QRLevelM,
		Model:      2,
	}); err != nil {
		return err
	}
	s.NewLine()

	s.Println("Thank you for your visit!")
	s.Println("Please come again!")
	s.NewLine()
	s.Println("Return Policy: 30 days with receipt")
	s.Println("Customer Service: (555) 123-HELP")
	newLines(s, 3)
	s.Cut()
	return nil
}

func customText(s *escpos.Session, env Env) error {
	s.AlignCenter()
	if err := s.SetTextSize(1, 1); err != nil {
		return err
	}
	s.SetBold(true)
	s.Println("CUSTOM PRINT")
	s.SetBold(false)
	_ = s.SetTextSize(0, 0)
	s.DrawLine()

	s.AlignLeft()
	s.SetTextNormal()
	s.Println(env.Text)
	s.NewLine()
	s.DrawLine()

	s.AlignCenter()
	s.Println("Printed: " + env.now().Format("1/2/2006, 3:04:05 PM"))
	s.Println("Powered by receipt-demo")
	newLines(s, 2)
	s.Cut()
	return nil
}

func connectionTest(s *escpos.Session, env Env) error {
	s.AlignCenter()
	s.Println("CONNECTION TEST")
	s.Println(timeOfDay(env.now()))
	s.Println("If you see this, connection works!")
	s.NewLine()
	s.Cut()
	return nil
}

func barcodeDemo(s *escpos.Session, env Env) error {
	title(s, "BARCODE DEMO")

	s.Println("Code128 Barcode:")
	if err := s.Code128("DEMO123456", escpos.BarcodeOptions{
		Width:        3,
		Height:       60,
		TextPosition: escpos.HRIBelow,
	}); err != nil {
		return err
	}
	s.NewLine()

	s.Println("QR Code - Small:")
	if err := s.EncodeQR("Small QR Code Test", escpos.QROptions{CellSize: 2, Correction: escpos.QRLevelL, Model: 2}); err != nil {
		return err
	}
	s.NewLine()

	s.Println("QR Code - Large:")
	if err := s.EncodeQR("https://github.com/Klemen1337/node-thermal-printer", escpos.QROptions{CellSize: 4, Correction: escpos.QRLevelM, Model: 2}); err != nil {
		return err
	}
	newLines(s, 2)
	s.Cut()
	return nil
}

func tableDemo(s *escpos.Session, env Env) error {
	title(s, "TABLE DEMO")

	s.AlignLeft()
	s.Println("Simple Table:")
	for _, row := range [][]string{
		{"Product", "Qty", "Price"},
		{"Coffee", "2", "$7.00"},
		{"Muffin", "1", "$2.99"},
		{"Total", "", "$9.99"},
	} {
		if err := s.Table(row...); err != nil {
			return err
		}
	}
	s.NewLine()

	s.Println("Custom Formatted Table:")
	rows := [][]escpos.Column{
		{
			{Text: "Item", Align: escpos.AlignLeft, Width: 0.5, Bold: true},
			{Text: "Qty", Align: escpos.AlignCenter, Width: 0.2, Bold: true},
			{Text: "Price", Align: escpos.AlignRight, Width: 0.3, Bold: true},
		},
		{
			{Text: "Espresso", Align: escpos.AlignLeft, Width: 0.5},
			{Text: "1", Align: escpos.AlignCenter, Width: 0.2},
			{Text: "$2.50", Align: escpos.AlignRight, Width: 0.3},
		},
		{
			{Text: "Cappuccino", Align: escpos.AlignLeft, Width: 0.5},
			{Text: "2", Align: escpos.AlignCenter, Width: 0.2},
			{Text: "$8.00", Align: escpos.AlignRight, Width: 0.3},
		},
	}
	for _, row := range rows {
		if err := s.CustomRow(row); err != nil {
			return err
		}
	}
	newLines(s, 2)
	s.Cut()
	return nil
}

func imageDemo(s *escpos.Session, env Env) error {
	title(s, "IMAGE PRINTING DEMO")
	s.Println("Printing sample image...")
	s.NewLine()

	path := env.ImagePath
	if path == "" {
		path = DefaultImagePath
	}
	img, err := imageload.Load(path, imageload.Options{MaxWidth: s.Profile().MaxDots, Dither: env.Dither})
	if err == nil {
		err = s.PrintImage(img, 0)
	}
	if err == nil {
		s.NewLine()
		s.Println("Image printed successfully!")
	} else {
		s.Println("[ IMAGE PLACEHOLDER ]")
		s.Println("Sample Logo Here")
		s.Println("(Create " + path + ")")
		s.Println("to see actual image printing")
	}

	s.NewLine()
	s.AlignCenter()
	s.Println("Image Demo Complete")
	newLines(s, 2)
	s.Cut()
	return nil
}

func partialCutDemo(s *escpos.Session, env Env) error {
	title(s, "PARTIAL CUT DEMO")

	s.AlignLeft()
	s.Println("This demonstrates partial cutting.")
	s.Println("The paper will be cut most of the way")
	s.Println("through, but will remain connected")
	s.Println("by a small strip.")
	s.NewLine()
	s.Println("You can tear it off easily.")
	s.NewLine()

	s.AlignCenter()
	s.Println("--- PARTIAL CUT LINE ---")
	s.NewLine()
	s.PartialCut()

	s.Println("--- AFTER PARTIAL CUT ---")
	s.Println("This text prints after the")
	s.Println("partial cut operation.")
	s.NewLine()
	s.Println("Time: " + timeOfDay(env.now()))
	newLines(s, 2)
	return nil
}

func fullCutDemo(s *escpos.Session, env Env) error {
	title(s, "FULL CUT DEMO")

	s.AlignLeft()
	s.Println("This demonstrates full cutting.")
	s.Println("The paper will be completely")
	s.Println("cut through, separating this")
	s.Println("section from the roll.")
	s.NewLine()
	s.Println("Perfect for receipts and")
	s.Println("individual documents.")
	s.NewLine()

	s.AlignCenter()
	s.Println("--- FULL CUT LINE ---")
	s.Println("Paper will be completely cut here")
	s.NewLine()
	s.Println("Cut performed at: " + timeOfDay(env.now()))
	newLines(s, 3)
	s.Cut()
	return nil
}

func cuttingComparisonDemo(s *escpos.Session, env Env) error {
	title(s, "CUTTING COMPARISON DEMO")

	s.AlignLeft()
	s.Println("This demo shows both types of cuts:")
	s.NewLine()

	section(s, "SECTION 1: PARTIAL CUT")
	s.Println("Text before partial cut.")
	s.Println("Notice how the paper stays")
	s.Println("connected after cutting.")
	s.NewLine()
	s.AlignCenter()
	s.Println("--- PARTIAL CUT HERE ---")
	s.PartialCut()
	s.Println("Text after partial cut.")
	s.Println("Paper is still connected!")
	newLines(s, 2)

	section(s, "SECTION 2: FULL CUT")
	s.Println("Text before full cut.")
	s.Println("This section will be")
	s.Println("completely separated.")
	s.NewLine()
	s.AlignCenter()
	s.Println("--- FULL CUT BELOW ---")
	s.Println("This is the end!")
	newLines(s, 3)
	s.Cut()
	return nil
}

func section(s *escpos.Session, text string) {
	s.AlignCenter()
	s.SetBold(true)
	s.Println(text)
	s.SetBold(false)
	s.AlignLeft()
}

func cashDrawer(s *escpos.Session, env Env) error {
	s.OpenCashDrawer()
	return nil
}
