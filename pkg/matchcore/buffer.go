package matchcore

import "encoding/binary"

// Reader performs typed, offset-addressed reads over a caller-owned byte
// slice. All multi-byte integers are big-endian, matching the wire contract
// inherited from the source platform (spec.md §4.1). Reader never copies or
// allocates the underlying bytes.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset.
func NewReader(buf []byte, offset int) *Reader {
	return &Reader{buf: buf, pos: offset}
}

// Pos returns the reader's current absolute offset into buf.
func (r *Reader) Pos() int { return r.pos }

// Seek repositions the reader to an absolute offset.
func (r *Reader) Seek(offset int) { r.pos = offset }

func (r *Reader) ReadU8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) ReadI8() int8 { return int8(r.ReadU8()) }

func (r *Reader) ReadU16() uint16 {
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v
}

func (r *Reader) ReadI16() int16 { return int16(r.ReadU16()) }

func (r *Reader) ReadU32() uint32 {
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *Reader) ReadI32() int32 { return int32(r.ReadU32()) }

func (r *Reader) ReadU64() uint64 {
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v
}

func (r *Reader) ReadI64() int64 { return int64(r.ReadU64()) }

// ReadU64At and friends perform a random-access read without disturbing the
// sequential cursor.
func (r *Reader) ReadU64At(offset int) uint64 {
	return binary.BigEndian.Uint64(r.buf[offset : offset+8])
}

func (r *Reader) ReadI64At(offset int) int64 { return int64(r.ReadU64At(offset)) }

func (r *Reader) ReadU32At(offset int) uint32 {
	return binary.BigEndian.Uint32(r.buf[offset : offset+4])
}

func (r *Reader) ReadU16At(offset int) uint16 {
	return binary.BigEndian.Uint16(r.buf[offset : offset+2])
}

func (r *Reader) ReadU8At(offset int) uint8 { return r.buf[offset] }

// Writer is a cursor-based, append-only writer over a caller-owned byte
// slice. It never reallocates: the caller is responsible for sizing buf to
// the worst case for the command being processed (spec.md §4.1, §5).
type Writer struct {
	buf []byte
	pos int
}

// NewWriter wraps buf for appends starting at offset.
func NewWriter(buf []byte, offset int) *Writer {
	return &Writer{buf: buf, pos: offset}
}

// Pos returns the writer's current absolute offset into buf — i.e. the
// total number of bytes written so far plus the starting offset.
func (w *Writer) Pos() int { return w.pos }

// Bytes returns buf from the absolute offset from up to the writer's
// current position.
func (w *Writer) Bytes(from int) []byte { return w.buf[from:w.pos] }

func (w *Writer) AppendU8(v uint8) {
	w.buf[w.pos] = v
	w.pos++
}

func (w *Writer) AppendI8(v int8) { w.AppendU8(uint8(v)) }

func (w *Writer) AppendU16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[w.pos:w.pos+2], v)
	w.pos += 2
}

func (w *Writer) AppendI16(v int16) { w.AppendU16(uint16(v)) }

func (w *Writer) AppendU32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[w.pos:w.pos+4], v)
	w.pos += 4
}

func (w *Writer) AppendI32(v int32) { w.AppendU32(uint32(v)) }

func (w *Writer) AppendU64(v uint64) {
	binary.BigEndian.PutUint64(w.buf[w.pos:w.pos+8], v)
	w.pos += 8
}

func (w *Writer) AppendI64(v int64) { w.AppendU64(uint64(v)) }
