package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"github.com/thereceipt/receipt-demo/internal/escpos"
)

// Options controls the preview canvas
type Options struct {
	Margin   int     // blank border in pixels
	FontSize float64 // 0 sizes the font so PrintWidth characters fill the paper
}

var parseMono = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gomono.TTF)
})

type run struct {
	text  string
	style escpos.Style
}

// Renderer draws decoded operations onto a paper-sized canvas. One dot
// is one pixel.
type Renderer struct {
	profile escpos.Profile
	margin  int
	width   int // canvas width including margins
	height  int
	ctx     *gg.Context
	face    font.Face
	cell    float64 // width of one font A character in dots
	y       float64
	line    []run
	align   escpos.Align
}

// New creates a renderer for a printer profile
func New(profile escpos.Profile, opts Options) (*Renderer, error) {
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	if profile.PrintWidth <= 0 || profile.MaxDots <= 0 {
		profile = escpos.DefaultProfile()
	}
	cell := float64(profile.MaxDots) / float64(profile.PrintWidth)

	f, err := parseMono()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	size := opts.FontSize
	if size <= 0 {
		// go mono advances 0.6 em per glyph
		size = cell / 0.6
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	r := &Renderer{
		profile: profile,
		margin:  opts.Margin,
		width:   profile.MaxDots + 2*opts.Margin,
		height:  1000,
		face:    face,
		cell:    cell,
		y:       float64(opts.Margin),
	}
	r.ctx = gg.NewContext(r.width, r.height)
	r.ctx.SetColor(color.White)
	r.ctx.Clear()
	r.ctx.SetColor(color.Black)
	r.ctx.SetFontFace(face)
	return r, nil
}

// Render decodes and draws a command stream
func Render(data []byte, profile escpos.Profile, opts Options) (image.Image, error) {
	ops, err := Decode(data)
	if err != nil {
		return nil, err
	}
	r, err := New(profile, opts)
	if err != nil {
		return nil, err
	}
	return r.Render(ops)
}

// RenderSession draws the current contents of a session
func RenderSession(s *escpos.Session, opts Options) (image.Image, error) {
	return Render(s.Bytes(), s.Profile(), opts)
}

// SavePNG writes a rendered preview to disk
func SavePNG(img image.Image, path string) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}

// Render draws ops and returns the canvas cropped to the content
func (r *Renderer) Render(ops []Op) (image.Image, error) {
	for _, o := range ops {
		if err := r.renderOp(o); err != nil {
			return nil, fmt.Errorf("failed to render %T: %w", o, err)
		}
	}
	r.flushLine(false)
	return r.cropToContent(), nil
}

func (r *Renderer) renderOp(o Op) error {
	switch op := o.(type) {
	case Text:
		if len(r.line) == 0 {
			r.align = op.Style.Align
		}
		r.line = append(r.line, run{op.Text, op.Style})
	case LineFeed:
		r.flushLine(true)
	case Feed:
		r.flushLine(false)
		r.advance(float64(op.Lines) * r.lineHeight())
	case Cut:
		r.flushLine(false)
		r.drawCut(op.Partial)
	case Initialize, Drawer:
		// nothing visible
	case Barcode:
		r.flushLine(false)
		return r.drawBarcode(op)
	case QRCode:
		r.flushLine(false)
		return r.drawQR(op)
	case Graphic:
		r.flushLine(false)
		r.drawImage(op.Image, op.Align)
	}
	return nil
}

func (r *Renderer) lineHeight() float64 {
	// font A cells are twice as tall as they are wide
	return 2 * r.cell
}

// flushLine prints buffered text. An empty buffer still advances one line
// when force is set, as a bare LF does on paper.
func (r *Renderer) flushLine(force bool) {
	if len(r.line) == 0 {
		if force {
			r.advance(r.lineHeight())
		}
		return
	}

	cells := 0.0
	tallest := 1
	for _, rn := range r.line {
		cells += float64(len([]rune(rn.text)) * (rn.style.Width + 1))
		if rn.style.Height+1 > tallest {
			tallest = rn.style.Height + 1
		}
	}
	lineW := cells * r.cell
	lineH := float64(tallest) * r.lineHeight()
	r.ensureHeight(int(lineH) + 1)

	x := r.alignX(lineW, r.align)
	baseline := r.y + lineH - 0.25*r.lineHeight()
	for _, rn := range r.line {
		sx, sy := float64(rn.style.Width+1), float64(rn.style.Height+1)
		for _, ch := range rn.text {
			r.drawGlyph(string(ch), x, baseline, sx, sy, rn.style.Bold)
			if rn.style.Underline {
				r.ctx.DrawLine(x, baseline+2, x+sx*r.cell, baseline+2)
				r.ctx.SetLineWidth(1)
				r.ctx.Stroke()
			}
			x += sx * r.cell
		}
	}

	r.line = r.line[:0]
	r.y += lineH
}

func (r *Renderer) drawGlyph(s string, x, baseline, sx, sy float64, bold bool) {
	r.ctx.Push()
	r.ctx.Translate(x, baseline)
	r.ctx.Scale(sx, sy)
	r.ctx.DrawString(s, 0, 0)
	if bold {
		r.ctx.DrawString(s, 1/sx, 0)
	}
	r.ctx.Pop()
}

func (r *Renderer) drawCut(partial bool) {
	r.advance(6)
	r.ensureHeight(12)
	r.ctx.SetLineWidth(1)
	if partial {
		r.ctx.SetDash(6, 4)
	}
	r.ctx.DrawLine(0, r.y, float64(r.width), r.y)
	r.ctx.Stroke()
	r.ctx.SetDash()
	r.advance(6)
}

func (r *Renderer) drawBarcode(op Barcode) error {
	payload := op.Payload
	var bc barcode.Barcode
	var err error
	switch op.Symbology {
	case escpos.CODE128:
		// code set selectors are printer syntax, not data
		for _, prefix := range []string{"{A", "{B", "{C"} {
			payload = strings.TrimPrefix(payload, prefix)
		}
		bc, err = code128.Encode(payload)
	case escpos.CODE39:
		bc, err = code39.Encode(payload, false, false)
	case escpos.EAN13, escpos.EAN8:
		bc, err = ean.Encode(payload)
	case escpos.UPCA:
		// UPC-A is EAN-13 with a leading zero
		bc, err = ean.Encode("0" + payload)
	default:
		err = fmt.Errorf("unsupported symbology %s", op.Symbology)
	}
	if err != nil {
		return err
	}

	modules := bc.Bounds().Dx()
	w := modules * op.Width
	if w > r.profile.MaxDots {
		w = modules
	}
	scaled, err := barcode.Scale(bc, w, op.Height)
	if err != nil {
		return err
	}

	if op.HRI == escpos.HRIAbove || op.HRI == escpos.HRIBoth {
		r.drawCaption(op.Payload)
	}
	r.drawImage(scaled, op.Align)
	if op.HRI == escpos.HRIBelow || op.HRI == escpos.HRIBoth {
		r.drawCaption(op.Payload)
	}
	return nil
}

func (r *Renderer) drawCaption(text string) {
	h := r.lineHeight()
	r.ensureHeight(int(h) + 1)
	r.ctx.DrawStringAnchored(text, float64(r.margin)+float64(r.profile.MaxDots)/2, r.y+h/2, 0.5, 0.35)
	r.y += h
}

func (r *Renderer) drawQR(op QRCode) error {
	level := qrcode.Medium
	switch op.Correction {
	case escpos.QRLevelL:
		level = qrcode.Low
	case escpos.QRLevelQ:
		level = qrcode.High
	case escpos.QRLevelH:
		level = qrcode.Highest
	}

	qr, err := qrcode.New(op.Payload, level)
	if err != nil {
		return err
	}
	qr.DisableBorder = true
	cellSize := op.CellSize
	if cellSize <= 0 {
		cellSize = escpos.DefaultQRCellSize
	}
	// negative size is pixels per module
	r.drawImage(qr.Image(-cellSize), op.Align)
	return nil
}

func (r *Renderer) drawImage(img image.Image, align escpos.Align) {
	b := img.Bounds()
	r.ensureHeight(b.Dy() + 1)
	x := r.alignX(float64(b.Dx()), align)
	r.ctx.DrawImage(img, int(x), int(r.y))
	r.y += float64(b.Dy())
}

func (r *Renderer) alignX(w float64, align escpos.Align) float64 {
	left := float64(r.margin)
	room := float64(r.profile.MaxDots) - w
	if room < 0 {
		room = 0
	}
	switch align {
	case escpos.AlignCenter:
		return left + room/2
	case escpos.AlignRight:
		return left + room
	}
	return left
}

func (r *Renderer) advance(dy float64) {
	r.ensureHeight(int(dy) + 1)
	r.y += dy
}

func (r *Renderer) ensureHeight(needed int) {
	if int(r.y)+needed <= r.height {
		return
	}
	newHeight := r.height * 2
	if newHeight < int(r.y)+needed {
		newHeight = int(r.y) + needed + 1000
	}

	newCtx := gg.NewContext(r.width, newHeight)
	newCtx.SetColor(color.White)
	newCtx.Clear()
	newCtx.DrawImage(r.ctx.Image(), 0, 0)
	newCtx.SetColor(color.Black)
	newCtx.SetFontFace(r.face)

	r.ctx = newCtx
	r.height = newHeight
}

func (r *Renderer) cropToContent() image.Image {
	finalHeight := int(r.y) + r.margin
	if finalHeight > r.height {
		finalHeight = r.height
	}
	if finalHeight < 1 {
		finalHeight = 1
	}

	img := r.ctx.Image()
	return img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, r.width, finalHeight))
}
