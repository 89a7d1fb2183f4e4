package proto

import "encoding/binary"

// enc appends little-endian fields to a payload.
type enc []byte

func newEnc(size int) enc { return make(enc, 0, size) }

func (e enc) u8(v uint8) enc   { return append(e, v) }
func (e enc) u16(v uint16) enc { return binary.LittleEndian.AppendUint16(e, v) }
func (e enc) u32(v uint32) enc { return binary.LittleEndian.AppendUint32(e, v) }

func (e enc) flag(v bool) enc {
	if v {
		return append(e, 1)
	}
	return append(e, 0)
}

// str16 writes a u16 length followed by the UTF-8 bytes of s.
func (e enc) str16(s string) enc { return append(e.u16(uint16(len(s))), s...) }

// bytes16 writes a u16 length followed by b.
func (e enc) bytes16(b []byte) enc { return append(e.u16(uint16(len(b))), b...) }

func (e enc) raw(b []byte) enc { return append(e, b...) }

// dec reads little-endian fields. A short read marks it bad and every later
// read yields zero values.
type dec struct {
	b   []byte
	bad bool
}

func (d *dec) take(n int) []byte {
	if d.bad || len(d.b) < n {
		d.bad = true
		return nil
	}
	p := d.b[:n]
	d.b = d.b[n:]
	return p
}

func (d *dec) u8() uint8 {
	if p := d.take(1); p != nil {
		return p[0]
	}
	return 0
}

func (d *dec) u16() uint16 {
	if p := d.take(2); p != nil {
		return binary.LittleEndian.Uint16(p)
	}
	return 0
}

func (d *dec) u32() uint32 {
	if p := d.take(4); p != nil {
		return binary.LittleEndian.Uint32(p)
	}
	return 0
}

func (d *dec) flag() bool { return d.u8() != 0 }

func (d *dec) bytes16() []byte { return d.take(int(d.u16())) }

func (d *dec) str16() string { return string(d.bytes16()) }

// rest consumes whatever is left.
func (d *dec) rest() []byte {
	r := d.b
	d.b = nil
	return r
}

// end reports a decode that consumed every byte without a short read.
func (d *dec) end() bool { return !d.bad && len(d.b) == 0 }
