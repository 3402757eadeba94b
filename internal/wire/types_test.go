package wire

import (
	"bytes"
	"io"
	"testing"
)

func TestUTF16RoundTrip(t *testing.T) {
	tests := []string{"", "hello", "Player1", "with spaces and punctuation!?", "§1§a§l"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := WriteUTF16(&buf, s); err != nil {
				t.Fatalf("WriteUTF16(%q) error: %v", s, err)
			}
			got, err := ReadUTF16(&buf)
			if err != nil {
				t.Fatalf("ReadUTF16 error: %v", err)
			}
			if got != s {
				t.Errorf("round-trip = %q, want %q", got, s)
			}
		})
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	WriteI8(&buf, -5)
	WriteI16(&buf, -1234)
	WriteI32(&buf, 123456789)
	WriteI64(&buf, -9876543210)
	WriteF32(&buf, 3.5)
	WriteF64(&buf, -2.25)
	WriteBool(&buf, true)

	if v, _ := ReadI8(&buf); v != -5 {
		t.Errorf("i8 = %d, want -5", v)
	}
	if v, _ := ReadI16(&buf); v != -1234 {
		t.Errorf("i16 = %d, want -1234", v)
	}
	if v, _ := ReadI32(&buf); v != 123456789 {
		t.Errorf("i32 = %d, want 123456789", v)
	}
	if v, _ := ReadI64(&buf); v != -9876543210 {
		t.Errorf("i64 = %d, want -9876543210", v)
	}
	if v, _ := ReadF32(&buf); v != 3.5 {
		t.Errorf("f32 = %v, want 3.5", v)
	}
	if v, _ := ReadF64(&buf); v != -2.25 {
		t.Errorf("f64 = %v, want -2.25", v)
	}
	if v, _ := ReadBool(&buf); v != true {
		t.Errorf("bool = %v, want true", v)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 127, 128, 255, 300, 1 << 20, 1 << 40, 1<<64 - 1}

	for _, v := range tests {
		var buf bytes.Buffer
		if _, err := WriteVarint(&buf, v); err != nil {
			t.Fatalf("WriteVarint(%d) error: %v", v, err)
		}
		got, err := ReadVarint(&buf)
		if err != nil {
			t.Fatalf("ReadVarint error: %v", err)
		}
		if got != v {
			t.Errorf("WriteVarint/ReadVarint(%d) = %d", v, got)
		}
	}
}

func TestItemRoundTrip(t *testing.T) {
	tests := []Item{
		{ID: -1},
		{ID: 1, Count: 1, Damage: 0, NBT: nil},
		{ID: 278, Count: 1, Damage: 0, NBT: []byte{0x0A, 0x00, 0x00, 0x00}},
		{ID: 54, Count: 64, Damage: 12},
	}

	for _, it := range tests {
		var buf bytes.Buffer
		if _, err := WriteItem(&buf, it); err != nil {
			t.Fatalf("WriteItem error: %v", err)
		}
		got, err := ReadItem(&buf)
		if err != nil {
			t.Fatalf("ReadItem error: %v", err)
		}
		if got.Empty() != it.Empty() {
			t.Fatalf("Empty() = %v, want %v", got.Empty(), it.Empty())
		}
		if it.Empty() {
			continue
		}
		if got.ID != it.ID || got.Count != it.Count || got.Damage != it.Damage || !bytes.Equal(got.NBT, it.NBT) {
			t.Errorf("round-trip = %+v, want %+v", got, it)
		}
	}
}

func TestItemCopyMatchesReadWrite(t *testing.T) {
	it := Item{ID: 278, Count: 1, Damage: 0, NBT: []byte{1, 2, 3}}
	var src bytes.Buffer
	WriteItem(&src, it)

	var dst bytes.Buffer
	if err := CopyItem(bytes.NewReader(src.Bytes()), &dst); err != nil {
		t.Fatalf("CopyItem error: %v", err)
	}
	if !bytes.Equal(dst.Bytes(), src.Bytes()) {
		t.Errorf("CopyItem output = %x, want %x", dst.Bytes(), src.Bytes())
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	entries := []MetadataEntry{
		{Key: 0, Kind: MetaI8, I: 5},
		{Key: 1, Kind: MetaI16, I: -300},
		{Key: 2, Kind: MetaI32, I: 100000},
		{Key: 3, Kind: MetaF32, F: 1.5},
		{Key: 4, Kind: MetaString, S: "hello"},
		{Key: 5, Kind: MetaItem, Item: Item{ID: 1, Count: 1}},
		{Key: 6, Kind: MetaTriple, Triple: [3]int32{1, 2, 3}},
	}

	var buf bytes.Buffer
	if err := WriteMetadata(&buf, entries); err != nil {
		t.Fatalf("WriteMetadata error: %v", err)
	}
	got, err := ReadMetadata(&buf)
	if err != nil {
		t.Fatalf("ReadMetadata error: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Key != e.Key || got[i].Kind != e.Kind {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestMetadataEmptyBlob(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMetadata(&buf, nil); err != nil {
		t.Fatalf("WriteMetadata error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{metadataEnd}) {
		t.Errorf("empty blob = %x, want just the sentinel", buf.Bytes())
	}
}

func TestCopyNAndSkip(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, ScratchSize*2+17)
	var scratch Scratch

	var dst bytes.Buffer
	if err := CopyN(bytes.NewReader(data), &dst, scratch[:], len(data)); err != nil {
		t.Fatalf("CopyN error: %v", err)
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Errorf("CopyN mismatched %d bytes", len(data))
	}

	r := bytes.NewReader(append(append([]byte{}, data...), 0xFF))
	if err := Skip(r, scratch[:], len(data)); err != nil {
		t.Fatalf("Skip error: %v", err)
	}
	rest, _ := io.ReadAll(r)
	if !bytes.Equal(rest, []byte{0xFF}) {
		t.Errorf("Skip left %x, want [ff]", rest)
	}
}
