/*
Package cell implements the binary layout of message bodies and contract
data.

A cell is a flat byte sequence built from fixed width big endian integers,
addresses, coin amounts and nested references. Builder appends fields and
Slice reads them back in the same order. Slice keeps the first error it
encounters and every following read returns a zero value, so decoders read
all fields and check Err once.
*/
package cell

import (
	"encoding/binary"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
)

const (
	addrNone byte = 0
	addrStd  byte = 1

	// MaxRefSize limits a single nested reference.
	MaxRefSize = 1 << 16
)

// Builder appends fields to a cell.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bytes returns the serialized cell.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Uint8 appends a single byte.
func (b *Builder) Uint8(v uint8) *Builder {
	b.buf = append(b.buf, v)
	return b
}

// Bool appends a flag byte.
func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.Uint8(1)
	}
	return b.Uint8(0)
}

// Uint32 appends a 32 bit big endian integer.
func (b *Builder) Uint32(v uint32) *Builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// Uint64 appends a 64 bit big endian integer.
func (b *Builder) Uint64(v uint64) *Builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// Address appends an optional address. An empty address is stored as a
// single zero tag byte.
func (b *Builder) Address(a fiva.Address) *Builder {
	if a.Empty() {
		return b.Uint8(addrNone)
	}
	b.Uint8(addrStd)
	b.buf = append(b.buf, a...)
	return b
}

// Coins appends an amount as a length byte followed by the minimal big
// endian representation.
func (b *Builder) Coins(c fiva.Coins) *Builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(c))
	i := 0
	for i < len(tmp) && tmp[i] == 0 {
		i++
	}
	b.Uint8(uint8(len(tmp) - i))
	b.buf = append(b.buf, tmp[i:]...)
	return b
}

// Fixed appends raw bytes without a length prefix. The reader must know
// the size.
func (b *Builder) Fixed(raw []byte) *Builder {
	b.buf = append(b.buf, raw...)
	return b
}

// Ref appends an optional nested reference. A nil reference is stored as a
// zero flag byte.
func (b *Builder) Ref(ref []byte) *Builder {
	if ref == nil {
		return b.Uint8(0)
	}
	b.Uint8(1)
	b.Uint32(uint32(len(ref)))
	b.buf = append(b.buf, ref...)
	return b
}

// String appends a reference holding the string bytes.
func (b *Builder) String(s string) *Builder {
	return b.Ref([]byte(s))
}

// Slice reads fields from a cell.
type Slice struct {
	buf []byte
	pos int
	err error
}

// NewSlice returns a reader over raw.
func NewSlice(raw []byte) *Slice {
	return &Slice{buf: raw}
}

// Err returns the first read error, if any.
func (s *Slice) Err() error {
	return s.err
}

// Remaining returns the number of unread bytes.
func (s *Slice) Remaining() int {
	return len(s.buf) - s.pos
}

// End returns the read error or, if none happened, an error when unread
// bytes are left.
func (s *Slice) End() error {
	if s.err != nil {
		return s.err
	}
	if n := s.Remaining(); n != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", n)
	}
	return nil
}

// Rest returns all unread bytes and consumes them.
func (s *Slice) Rest() []byte {
	if s.err != nil {
		return nil
	}
	rest := s.buf[s.pos:]
	s.pos = len(s.buf)
	return rest
}

func (s *Slice) take(n int, what string) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || s.Remaining() < n {
		s.err = errors.Wrapf(errors.ErrInput, "cell underflow reading %s", what)
		return nil
	}
	out := s.buf[s.pos : s.pos+n]
	s.pos += n
	return out
}

// Uint8 reads a single byte.
func (s *Slice) Uint8() uint8 {
	raw := s.take(1, "uint8")
	if raw == nil {
		return 0
	}
	return raw[0]
}

// Bool reads a flag byte. Values other than 0 and 1 are rejected.
func (s *Slice) Bool() bool {
	switch v := s.Uint8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if s.err == nil {
			s.err = errors.Wrapf(errors.ErrInput, "invalid flag %d", v)
		}
		return false
	}
}

// Uint32 reads a 32 bit big endian integer.
func (s *Slice) Uint32() uint32 {
	raw := s.take(4, "uint32")
	if raw == nil {
		return 0
	}
	return binary.BigEndian.Uint32(raw)
}

// Uint64 reads a 64 bit big endian integer.
func (s *Slice) Uint64() uint64 {
	raw := s.take(8, "uint64")
	if raw == nil {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

// Address reads an optional address. The none address is returned as nil.
func (s *Slice) Address() fiva.Address {
	switch tag := s.Uint8(); tag {
	case addrNone:
		return nil
	case addrStd:
		raw := s.take(fiva.AddressLength, "address")
		if raw == nil {
			return nil
		}
		return append(fiva.Address(nil), raw...)
	default:
		if s.err == nil {
			s.err = errors.Wrapf(errors.ErrInput, "unknown address tag %d", tag)
		}
		return nil
	}
}

// Coins reads a length prefixed amount.
func (s *Slice) Coins() fiva.Coins {
	n := int(s.Uint8())
	if n > 8 {
		if s.err == nil {
			s.err = errors.Wrapf(errors.ErrInput, "coins length %d", n)
		}
		return 0
	}
	raw := s.take(n, "coins")
	if raw == nil {
		return 0
	}
	var v uint64
	for _, c := range raw {
		v = v<<8 | uint64(c)
	}
	return fiva.Coins(v)
}

// Fixed reads n raw bytes.
func (s *Slice) Fixed(n int) []byte {
	raw := s.take(n, "fixed bytes")
	if raw == nil {
		return nil
	}
	return append([]byte(nil), raw...)
}

// Ref reads an optional nested reference. An absent reference is nil.
func (s *Slice) Ref() []byte {
	if !s.Bool() {
		return nil
	}
	n := s.Uint32()
	if n > MaxRefSize {
		if s.err == nil {
			s.err = errors.Wrapf(errors.ErrInput, "reference of %d bytes", n)
		}
		return nil
	}
	raw := s.take(int(n), "reference")
	if raw == nil {
		return nil
	}
	return append([]byte{}, raw...)
}

// String reads a reference as a string.
func (s *Slice) String() string {
	return string(s.Ref())
}
