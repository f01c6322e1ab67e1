package escpos

import (
	"image"
	"image/color"
)

// Raster defaults
const (
	DefaultThreshold   = 128
	DefaultStripHeight = 256
)

// Strip is one horizontal slice of a 1-bit image, column-major with 8
// vertical dots per byte (MSB on top)
type Strip struct {
	Width  int
	Height int
	Data   []byte
}

// Bands is the number of 8-dot rows in the strip
func (s Strip) Bands() int {
	return (s.Height + 7) / 8
}

// Rasterize thresholds img to 1 bit and cuts it into strips no taller than
// maxStrip dots. A pixel is ink when its luminance is below threshold.
// Transparent pixels are paper.
func Rasterize(img image.Image, threshold uint8, maxStrip int) ([]Strip, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, &ImageError{Width: w, Height: h, Reason: "empty image"}
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if maxStrip <= 0 {
		maxStrip = DefaultStripHeight
	}
	if maxStrip >= 8 {
		maxStrip -= maxStrip % 8
	}

	var strips []Strip
	for top := 0; top < h; top += maxStrip {
		sh := maxStrip
		if top+sh > h {
			sh = h - top
		}
		strip := Strip{Width: w, Height: sh}
		bands := strip.Bands()
		strip.Data = make([]byte, w*bands)
		for x := 0; x < w; x++ {
			for y := 0; y < sh; y++ {
				if !isInk(img.At(b.Min.X+x, b.Min.Y+top+y), threshold) {
					continue
				}
				strip.Data[x*bands+y/8] |= 0x80 >> uint(y%8)
			}
		}
		strips = append(strips, strip)
	}
	return strips, nil
}

func isInk(c color.Color, threshold uint8) bool {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return false
	}
	// composite over white paper
	white := 0xFFFF - a
	r, g, b = r+white, g+white, b+white
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return uint8(y) < threshold
}

// PrintImage rasterizes img and appends one graphics store and print pair
// per strip (GS ( L functions 113 and 50).
func (s *Session) PrintImage(img image.Image, threshold uint8) error {
	b := img.Bounds()
	if b.Dx() > s.profile.MaxDots {
		return &ImageError{Width: b.Dx(), Height: b.Dy(), MaxWidth: s.profile.MaxDots, Reason: "wider than printable area"}
	}
	strips, err := Rasterize(img, threshold, DefaultStripHeight)
	if err != nil {
		return err
	}
	for _, st := range strips {
		if 10+len(st.Data) > 0xFFFF {
			return &ImageError{Width: b.Dx(), Height: b.Dy(), MaxWidth: s.profile.MaxDots, Reason: "strip exceeds command length"}
		}
	}

	for _, st := range strips {
		s.buf.Append(GS, '(', 'L')
		s.buf.AppendBytes(lowHigh(10+len(st.Data), 2))
		s.buf.Append(48, 113, 48, 1, 1, 49)
		s.buf.AppendBytes(lowHigh(st.Width, 2))
		s.buf.AppendBytes(lowHigh(st.Height, 2))
		s.buf.AppendBytes(st.Data)
		s.buf.AppendBytes(cmdGraphicsDraw)
	}
	return nil
}
