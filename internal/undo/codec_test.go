package undo

import (
	"bytes"
	"testing"
)

func TestBinaryCodecIntRoundTrip(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer

	if err := c.WriteU8(&buf, 0xAB); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	if err := c.WriteU16(&buf, 0x1234); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}
	if err := c.WriteU32(&buf, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := c.WriteU64(&buf, 0x0102030405060708); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if err := c.WriteI64(&buf, -42); err != nil {
		t.Fatalf("WriteI64: %v", err)
	}

	u8, err := c.ReadU8(&buf)
	if err != nil || u8 != 0xAB {
		t.Errorf("ReadU8 = %x, %v, want 0xAB, nil", u8, err)
	}
	u16, err := c.ReadU16(&buf)
	if err != nil || u16 != 0x1234 {
		t.Errorf("ReadU16 = %x, %v, want 0x1234, nil", u16, err)
	}
	u32, err := c.ReadU32(&buf)
	if err != nil || u32 != 0xDEADBEEF {
		t.Errorf("ReadU32 = %x, %v, want 0xDEADBEEF, nil", u32, err)
	}
	u64, err := c.ReadU64(&buf)
	if err != nil || u64 != 0x0102030405060708 {
		t.Errorf("ReadU64 = %x, %v, want 0x0102030405060708, nil", u64, err)
	}
	i64, err := c.ReadI64(&buf)
	if err != nil || i64 != -42 {
		t.Errorf("ReadI64 = %d, %v, want -42, nil", i64, err)
	}
}

func TestBinaryCodecStringRoundTrip(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer
	want := "hello, undo tree"
	if err := c.WriteString(&buf, want); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	got, err := c.ReadString(&buf)
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != want {
		t.Errorf("ReadString = %q, want %q", got, want)
	}
}

func TestBinaryCodecEmptyStringRoundTrip(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer
	if err := c.WriteString(&buf, ""); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	got, err := c.ReadString(&buf)
	if err != nil || got != "" {
		t.Errorf("ReadString = %q, %v, want \"\", nil", got, err)
	}
}

func TestBinaryCodecOptFieldsRoundTrip(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer
	fields := []OptField{
		{Tag: OptTagLastSaveNr, Payload: []byte{0, 0, 0, 7}},
		{Tag: 9, Payload: []byte{1, 2, 3}},
	}
	if err := c.WriteOptFields(&buf, fields); err != nil {
		t.Fatalf("WriteOptFields: %v", err)
	}
	// A terminating zero-length entry must follow.
	got, err := c.ReadOptFields(&buf)
	if err != nil {
		t.Fatalf("ReadOptFields: %v", err)
	}
	if len(got) != len(fields) {
		t.Fatalf("ReadOptFields returned %d fields, want %d", len(got), len(fields))
	}
	for i, f := range fields {
		if got[i].Tag != f.Tag || !bytes.Equal(got[i].Payload, f.Payload) {
			t.Errorf("field %d = %+v, want %+v", i, got[i], f)
		}
	}
}

func TestBinaryCodecOptFieldsEmpty(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer
	if err := c.WriteOptFields(&buf, nil); err != nil {
		t.Fatalf("WriteOptFields: %v", err)
	}
	got, err := c.ReadOptFields(&buf)
	if err != nil {
		t.Fatalf("ReadOptFields: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadOptFields = %v, want empty", got)
	}
}

func TestBinaryCodecPositionRoundTrip(t *testing.T) {
	c := BinaryCodec{}
	var buf bytes.Buffer
	want := Position{Lnum: 12, Col: 3, ColAdd: 1}
	if err := c.WritePos(&buf, want); err != nil {
		t.Fatalf("WritePos: %v", err)
	}
	got, err := c.ReadPos(&buf)
	if err != nil {
		t.Fatalf("ReadPos: %v", err)
	}
	if got != want {
		t.Errorf("ReadPos = %+v, want %+v", got, want)
	}
}
