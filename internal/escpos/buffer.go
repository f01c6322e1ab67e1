package escpos

// Buffer is an append-only ESC/POS byte stream
type Buffer struct {
	data []byte
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, 1024)}
}

// Append appends raw bytes
func (b *Buffer) Append(p ...byte) {
	b.data = append(b.data, p...)
}

// AppendBytes appends a byte slice
func (b *Buffer) AppendBytes(p []byte) {
	b.data = append(b.data, p...)
}

// Clear discards all pending content
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

// Snapshot returns a copy of the stream that later appends cannot change
func (b *Buffer) Snapshot() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int {
	return len(b.data)
}
