package undo

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BinaryCodec implements the primitive encode/decode operations of the
// undo file format (§6.2): big-endian fixed-width integers,
// length-prefixed strings, and TLV-style optional fields. It holds no
// state; it is a thin, allocation-light wrapper kept as its own type
// so persist.go reads as a sequence of named field operations rather
// than raw binary.Write/Read calls inline.
type BinaryCodec struct{}

func (BinaryCodec) WriteU8(w io.Writer, v uint8) error {
	return binary.Write(w, binary.BigEndian, v)
}

func (BinaryCodec) WriteU16(w io.Writer, v uint16) error {
	return binary.Write(w, binary.BigEndian, v)
}

func (BinaryCodec) WriteU32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.BigEndian, v)
}

func (BinaryCodec) WriteU64(w io.Writer, v uint64) error {
	return binary.Write(w, binary.BigEndian, v)
}

func (BinaryCodec) WriteI64(w io.Writer, v int64) error {
	return binary.Write(w, binary.BigEndian, v)
}

// WriteString writes a 4-byte big-endian length prefix followed by the
// raw bytes, with no terminator.
func (c BinaryCodec) WriteString(w io.Writer, s string) error {
	if err := c.WriteU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func (BinaryCodec) WriteBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

func (c BinaryCodec) ReadU8(r io.Reader) (uint8, error) {
	var v uint8
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func (c BinaryCodec) ReadU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func (c BinaryCodec) ReadU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func (c BinaryCodec) ReadU64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func (c BinaryCodec) ReadI64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func (c BinaryCodec) ReadString(r io.Reader) (string, error) {
	n, err := c.ReadU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (c BinaryCodec) ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// OptField is one TLV entry of an optfields block.
type OptField struct {
	Tag     uint8
	Payload []byte
}

// Tags used in the optfields blocks this engine writes. Unknown tags
// encountered on read are skipped (forward compatibility), matching
// the grounding reference's tag-prefixed decode loop.
const (
	OptTagLastSaveNr uint8 = 1
)

// WriteOptFields writes a TLV-style optfields block: (len:u8 tag:u8
// payload:len-1 bytes)* terminated by a single 0x00 length byte. len
// counts the tag byte plus the payload, matching ReadOptFields.
func (c BinaryCodec) WriteOptFields(w io.Writer, fields []OptField) error {
	for _, f := range fields {
		if len(f.Payload) > 254 {
			return fmt.Errorf("undo: optfield payload too large: %d bytes", len(f.Payload))
		}
		if err := c.WriteU8(w, uint8(len(f.Payload)+1)); err != nil {
			return err
		}
		if err := c.WriteU8(w, f.Tag); err != nil {
			return err
		}
		if err := c.WriteBytes(w, f.Payload); err != nil {
			return err
		}
	}
	return c.WriteU8(w, 0)
}

// ReadOptFields reads an optfields block until the terminating
// zero-length entry.
func (c BinaryCodec) ReadOptFields(r io.Reader) ([]OptField, error) {
	var out []OptField
	for {
		length, err := c.ReadU8(r)
		if err != nil {
			return nil, err
		}
		if length == 0 {
			return out, nil
		}
		tag, err := c.ReadU8(r)
		if err != nil {
			return nil, err
		}
		payload, err := c.ReadBytes(r, int(length)-1)
		if err != nil {
			return nil, err
		}
		out = append(out, OptField{Tag: tag, Payload: payload})
	}
}

// WritePos writes a Position as lnum:u32 col:u32 coladd:u32.
func (c BinaryCodec) WritePos(w io.Writer, p Position) error {
	if err := c.WriteU32(w, p.Lnum); err != nil {
		return err
	}
	if err := c.WriteU32(w, p.Col); err != nil {
		return err
	}
	return c.WriteU32(w, p.ColAdd)
}

// ReadPos reads a Position.
func (c BinaryCodec) ReadPos(r io.Reader) (Position, error) {
	lnum, err := c.ReadU32(r)
	if err != nil {
		return Position{}, err
	}
	col, err := c.ReadU32(r)
	if err != nil {
		return Position{}, err
	}
	coladd, err := c.ReadU32(r)
	if err != nil {
		return Position{}, err
	}
	return Position{Lnum: lnum, Col: col, ColAdd: coladd}, nil
}
