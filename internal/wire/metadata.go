package wire

import "io"

// MetadataKind is the primitive type tag carried in the high 3 bits of a
// metadata entry's tag byte.
type MetadataKind byte

const (
	MetaI8     MetadataKind = 0
	MetaI16    MetadataKind = 1
	MetaI32    MetadataKind = 2
	MetaF32    MetadataKind = 3
	MetaString MetadataKind = 4
	MetaItem   MetadataKind = 5
	MetaTriple MetadataKind = 6
)

// metadataEnd is the sentinel tag byte that terminates a metadata blob.
const metadataEnd = 0x7F

// MetadataEntry is one entry of an entity metadata blob.
type MetadataEntry struct {
	Key    byte
	Kind   MetadataKind
	I      int32
	F      float32
	S      string
	Item   Item
	Triple [3]int32
}

// ReadMetadata reads entries until the 0x7F sentinel.
func ReadMetadata(r io.Reader) ([]MetadataEntry, error) {
	var entries []MetadataEntry
	for {
		tag, err := ReadU8(r)
		if err != nil {
			return nil, err
		}
		if tag == metadataEnd {
			return entries, nil
		}
		kind := MetadataKind(tag >> 5)
		key := tag & 0x1F
		entry := MetadataEntry{Key: key, Kind: kind}
		switch kind {
		case MetaI8:
			v, err := ReadI8(r)
			if err != nil {
				return nil, err
			}
			entry.I = int32(v)
		case MetaI16:
			v, err := ReadI16(r)
			if err != nil {
				return nil, err
			}
			entry.I = int32(v)
		case MetaI32:
			v, err := ReadI32(r)
			if err != nil {
				return nil, err
			}
			entry.I = v
		case MetaF32:
			v, err := ReadF32(r)
			if err != nil {
				return nil, err
			}
			entry.F = v
		case MetaString:
			v, err := ReadUTF16(r)
			if err != nil {
				return nil, err
			}
			entry.S = v
		case MetaItem:
			v, err := ReadItem(r)
			if err != nil {
				return nil, err
			}
			entry.Item = v
		case MetaTriple:
			for i := range entry.Triple {
				v, err := ReadI32(r)
				if err != nil {
					return nil, err
				}
				entry.Triple[i] = v
			}
		}
		entries = append(entries, entry)
	}
}

// WriteMetadata writes entries followed by the 0x7F sentinel.
func WriteMetadata(w io.Writer, entries []MetadataEntry) error {
	for _, entry := range entries {
		tag := byte(entry.Kind)<<5 | entry.Key&0x1F
		if _, err := WriteU8(w, tag); err != nil {
			return err
		}
		switch entry.Kind {
		case MetaI8:
			if _, err := WriteI8(w, int8(entry.I)); err != nil {
				return err
			}
		case MetaI16:
			if _, err := WriteI16(w, int16(entry.I)); err != nil {
				return err
			}
		case MetaI32:
			if _, err := WriteI32(w, entry.I); err != nil {
				return err
			}
		case MetaF32:
			if _, err := WriteF32(w, entry.F); err != nil {
				return err
			}
		case MetaString:
			if _, err := WriteUTF16(w, entry.S); err != nil {
				return err
			}
		case MetaItem:
			if _, err := WriteItem(w, entry.Item); err != nil {
				return err
			}
		case MetaTriple:
			for _, v := range entry.Triple {
				if _, err := WriteI32(w, v); err != nil {
					return err
				}
			}
		}
	}
	_, err := WriteU8(w, metadataEnd)
	return err
}

// CopyMetadata reads a metadata blob from r and mirrors its bytes to w
// without materializing entry values, for the common pass-through case.
func CopyMetadata(r io.Reader, w io.Writer) error {
	for {
		tag, err := ReadU8(r)
		if err != nil {
			return err
		}
		if _, err := WriteU8(w, tag); err != nil {
			return err
		}
		if tag == metadataEnd {
			return nil
		}
		kind := MetadataKind(tag >> 5)
		switch kind {
		case MetaI8:
			v, err := ReadI8(r)
			if err != nil {
				return err
			}
			if _, err := WriteI8(w, v); err != nil {
				return err
			}
		case MetaI16:
			v, err := ReadI16(r)
			if err != nil {
				return err
			}
			if _, err := WriteI16(w, v); err != nil {
				return err
			}
		case MetaI32:
			v, err := ReadI32(r)
			if err != nil {
				return err
			}
			if _, err := WriteI32(w, v); err != nil {
				return err
			}
		case MetaF32:
			v, err := ReadF32(r)
			if err != nil {
				return err
			}
			if _, err := WriteF32(w, v); err != nil {
				return err
			}
		case MetaString:
			v, err := ReadUTF16(r)
			if err != nil {
				return err
			}
			if _, err := WriteUTF16(w, v); err != nil {
				return err
			}
		case MetaItem:
			if err := CopyItem(r, w); err != nil {
				return err
			}
		case MetaTriple:
			for i := 0; i < 3; i++ {
				v, err := ReadI32(r)
				if err != nil {
					return err
				}
				if _, err := WriteI32(w, v); err != nil {
					return err
				}
			}
		}
	}
}
