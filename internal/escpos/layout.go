package escpos

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Column is one cell of a custom table row
type Column struct {
	Text  string
	Align Align
	Width float64 // fraction of the line, 0 < Width <= 1
	Bold  bool
}

// SimpleRow prints three cells in equal thirds of the line
func (s *Session) SimpleRow(a, b, c string) error {
	return s.Table(a, b, c)
}

// Table prints cells in equal slots. The first slot takes the division
// remainder and every slot but the last keeps one trailing space as separator.
func (s *Session) Table(cells ...string) error {
	if len(cells) == 0 {
		return &EncodingError{Op: "table", Reason: "at least one cell is required"}
	}
	width := s.Width()
	if len(cells) > width {
		return &EncodingError{Op: "table", Field: "cells", Value: len(cells), Reason: "more cells than characters per line"}
	}
	slot := width / len(cells)
	first := slot + width%len(cells)

	var sb strings.Builder
	for i, cell := range cells {
		w := slot
		if i == 0 {
			w = first
		}
		text := cell
		if i < len(cells)-1 {
			text = truncate(text, w-1)
		}
		sb.WriteString(pad(text, w, AlignLeft))
	}
	s.Println(sb.String())
	return nil
}

// CustomRow prints columns sized by fraction of the line. Text wider than
// its column is cut off without an ellipsis. A bold column is emphasized on
// its own and the pre-row bold state is back in effect before the line feed.
func (s *Session) CustomRow(cols []Column) error {
	widths, err := ColumnWidths(cols, s.Width())
	if err != nil {
		return err
	}

	restore := s.style.Bold
	for i, col := range cols {
		s.SetBold(col.Bold || restore)
		s.Print(pad(truncate(col.Text, widths[i]), widths[i], col.Align))
	}
	s.SetBold(restore)
	s.NewLine()
	return nil
}

// ColumnWidths converts width fractions into character counts that always
// sum to width. The last column absorbs the rounding remainder.
func ColumnWidths(cols []Column, width int) ([]int, error) {
	if len(cols) == 0 {
		return nil, &EncodingError{Op: "table", Reason: "at least one column is required"}
	}
	total := 0.0
	for _, c := range cols {
		if c.Width <= 0 || c.Width > 1 || math.IsNaN(c.Width) {
			return nil, &EncodingError{Op: "table", Field: "column width", Value: c.Width, Reason: "must be in (0, 1]"}
		}
		total += c.Width
	}
	if total > 1+1e-9 {
		return nil, &EncodingError{Op: "table", Field: "column widths", Value: total, Reason: "sum exceeds 1"}
	}

	widths := make([]int, len(cols))
	used := 0
	for i := 0; i < len(cols)-1; i++ {
		w := int(math.Round(cols[i].Width * float64(width)))
		if w > width-used {
			w = width - used
		}
		widths[i] = w
		used += w
	}
	widths[len(cols)-1] = width - used
	return widths, nil
}

// LayoutRow renders a custom row as plain text, without style changes
func LayoutRow(cols []Column, width int) (string, error) {
	widths, err := ColumnWidths(cols, width)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, col := range cols {
		sb.WriteString(pad(truncate(col.Text, widths[i]), widths[i], col.Align))
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// pad fills s to n runes. CENTER puts the odd space on the right.
func pad(s string, n int, a Align) string {
	gap := n - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
