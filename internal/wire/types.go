// Package wire implements the typed, big-endian binary primitives the
// tunnel's packet grammar is built from: fixed-width integers and floats,
// length-prefixed UTF-16 strings, variable-length integers, items, and
// entity metadata blobs.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxUTF16Len bounds a string length read off the wire so a corrupt or
// hostile length field cannot trigger an unbounded allocation.
const maxUTF16Len = 1 << 16

// ReadI8 reads a signed 8-bit integer.
func ReadI8(r io.Reader) (int8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

// WriteI8 writes a signed 8-bit integer and returns the value written.
func WriteI8(w io.Writer, v int8) (int8, error) {
	_, err := w.Write([]byte{byte(v)})
	return v, err
}

// ReadU8 reads an unsigned 8-bit integer (used for opcodes and flag bytes).
func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteU8 writes an unsigned 8-bit integer and returns the value written.
func WriteU8(w io.Writer, v uint8) (uint8, error) {
	_, err := w.Write([]byte{v})
	return v, err
}

// ReadBool reads a boolean encoded as a single byte (0 = false, nonzero = true).
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadU8(r)
	return b != 0, err
}

// WriteBool writes a boolean and returns the value written.
func WriteBool(w io.Writer, v bool) (bool, error) {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := WriteU8(w, b)
	return v, err
}

// ReadI16 reads a big-endian signed 16-bit integer.
func ReadI16(r io.Reader) (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

// WriteI16 writes a big-endian signed 16-bit integer and returns the value written.
func WriteI16(w io.Writer, v int16) (int16, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := w.Write(buf[:])
	return v, err
}

// ReadI32 reads a big-endian signed 32-bit integer.
func ReadI32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// WriteI32 writes a big-endian signed 32-bit integer and returns the value written.
func WriteI32(w io.Writer, v int32) (int32, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return v, err
}

// ReadI64 reads a big-endian signed 64-bit integer.
func ReadI64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// WriteI64 writes a big-endian signed 64-bit integer and returns the value written.
func WriteI64(w io.Writer, v int64) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return v, err
}

// ReadF32 reads a big-endian IEEE-754 32-bit float.
func ReadF32(r io.Reader) (float32, error) {
	v, err := ReadI32(r)
	return math.Float32frombits(uint32(v)), err
}

// WriteF32 writes a big-endian IEEE-754 32-bit float and returns the value written.
func WriteF32(w io.Writer, v float32) (float32, error) {
	_, err := WriteI32(w, int32(math.Float32bits(v)))
	return v, err
}

// ReadF64 reads a big-endian IEEE-754 64-bit float.
func ReadF64(r io.Reader) (float64, error) {
	v, err := ReadI64(r)
	return math.Float64frombits(uint64(v)), err
}

// WriteF64 writes a big-endian IEEE-754 64-bit float and returns the value written.
func WriteF64(w io.Writer, v float64) (float64, error) {
	_, err := WriteI64(w, int64(math.Float64bits(v)))
	return v, err
}

// ReadUTF16 reads an i16-prefixed UTF-16 string. The prefix counts 16-bit
// code units, not bytes and not code points; surrogate pairs are not
// interpreted, matching the wire format exactly.
func ReadUTF16(r io.Reader) (string, error) {
	length, err := ReadI16(r)
	if err != nil {
		return "", err
	}
	if length < 0 || int(length) > maxUTF16Len {
		return "", fmt.Errorf("wire: utf16 length out of range: %d", length)
	}
	units := make([]uint16, length)
	buf := make([]byte, int(length)*2)
	if length > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
	}
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[i*2:])
	}
	return string(utf16Decode(units)), nil
}

// WriteUTF16 writes an i16-prefixed UTF-16 string and returns the value written.
func WriteUTF16(w io.Writer, s string) (string, error) {
	units := utf16Encode([]rune(s))
	if _, err := WriteI16(w, int16(len(units))); err != nil {
		return s, err
	}
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[i*2:], u)
	}
	_, err := w.Write(buf)
	return s, err
}

// utf16Encode converts runes to UTF-16 code units, including surrogate pairs
// for code points outside the basic multilingual plane.
func utf16Encode(runes []rune) []uint16 {
	units := make([]uint16, 0, len(runes))
	for _, r := range runes {
		switch {
		case r < 0 || r > 0x10FFFF:
			units = append(units, 0xFFFD)
		case r <= 0xFFFF:
			units = append(units, uint16(r))
		default:
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
		}
	}
	return units
}

// utf16Decode converts UTF-16 code units back to a rune slice without
// interpreting surrogate pairs as combined code points, matching the wire
// format's invariant that the length prefix counts raw code units.
func utf16Decode(units []uint16) []rune {
	runes := make([]rune, len(units))
	for i, u := range units {
		runes[i] = rune(u)
	}
	return runes
}

// ReadSpan reads n raw bytes.
func ReadSpan(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("wire: negative span length: %d", n)
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// WriteSpan writes raw bytes and returns the value written.
func WriteSpan(w io.Writer, b []byte) ([]byte, error) {
	_, err := w.Write(b)
	return b, err
}
