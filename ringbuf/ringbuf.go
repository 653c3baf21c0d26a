// Package ringbuf implements the bounded circular byte FIFO shared by every
// serial driver in the module: it absorbs bursty OS reads and is drained
// incrementally by a framer that cannot always consume to a packet
// boundary.
package ringbuf

// Capacity is the total backing-array size. One slot is always kept empty
// to distinguish full from empty without a separate boolean, so Usable is
// the real maximum occupancy.
const Capacity = 16384

// Usable is the maximum number of bytes the buffer can hold at once.
const Usable = Capacity - 1

// Buffer is a fixed-capacity circular byte queue. It is not safe for
// concurrent use: each instance is owned by exactly one driver's reader
// goroutine for its entire lifetime.
type Buffer struct {
	data   [Capacity]byte
	start  int
	end    int
	length int
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int {
	return b.length
}

// IsFull reports whether the buffer has no room for another byte.
func (b *Buffer) IsFull() bool {
	return b.length == Usable
}

// IsEmpty reports whether the buffer holds no bytes.
func (b *Buffer) IsEmpty() bool {
	return b.length == 0
}

// Clear resets the buffer to empty without touching the backing array.
func (b *Buffer) Clear() {
	b.start = 0
	b.end = 0
	b.length = 0
}

// Append stores a single byte. It returns true if stored, false if the
// buffer was already full.
func (b *Buffer) Append(c byte) bool {
	if b.IsFull() {
		return false
	}
	b.data[b.end] = c
	b.end = (b.end + 1) % Capacity
	b.length++
	return true
}

// AppendMany stores as large a prefix of src as fits and returns the count
// actually stored. Order is preserved.
func (b *Buffer) AppendMany(src []byte) int {
	n := 0
	for _, c := range src {
		if !b.Append(c) {
			break
		}
		n++
	}
	return n
}

// RemoveFront advances the start pointer by min(n, Len()) and returns the
// number of bytes actually removed.
func (b *Buffer) RemoveFront(n int) int {
	if n > b.length {
		n = b.length
	}
	b.start = (b.start + n) % Capacity
	b.length -= n
	return n
}

// At returns the byte logically i positions from the start (0 <= i <
// Len()). Out-of-range indices return a benign zero sentinel; callers must
// bounds-check with Len() if they need to distinguish "zero byte" from
// "out of range".
func (b *Buffer) At(i int) byte {
	if i < 0 || i >= b.length {
		return 0
	}
	return b.data[(b.start+i)%Capacity]
}

// CopyOut writes up to min(Len()-offset, len(dst)) bytes, starting at
// logical offset, into dst and returns the count copied.
func (b *Buffer) CopyOut(dst []byte, offset int) int {
	if offset < 0 || offset >= b.length {
		return 0
	}
	avail := b.length - offset
	n := len(dst)
	if n > avail {
		n = avail
	}
	src := (b.start + offset) % Capacity
	for i := 0; i < n; i++ {
		dst[i] = b.data[(src+i)%Capacity]
	}
	return n
}

// IndexByte returns the logical offset of the first occurrence of c at or
// after fromOffset, or -1 if not present.
func (b *Buffer) IndexByte(c byte, fromOffset int) int {
	for i := fromOffset; i < b.length; i++ {
		if b.At(i) == c {
			return i
		}
	}
	return -1
}
