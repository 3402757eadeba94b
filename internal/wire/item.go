package wire

import "io"

// Item is the variable-length item record: (id, [count, damage, nbt]). An id
// below zero denotes an empty slot and carries no further fields.
type Item struct {
	ID     int16
	Count  int8
	Damage int16
	NBT    []byte
}

// Empty reports whether the item slot is empty (id < 0).
func (it Item) Empty() bool {
	return it.ID < 0
}

// ReadItem reads an Item record.
func ReadItem(r io.Reader) (Item, error) {
	id, err := ReadI16(r)
	if err != nil {
		return Item{}, err
	}
	if id < 0 {
		return Item{ID: id}, nil
	}
	count, err := ReadI8(r)
	if err != nil {
		return Item{}, err
	}
	damage, err := ReadI16(r)
	if err != nil {
		return Item{}, err
	}
	nbtLen, err := ReadI16(r)
	if err != nil {
		return Item{}, err
	}
	var nbt []byte
	if nbtLen > 0 {
		nbt, err = ReadSpan(r, int(nbtLen))
		if err != nil {
			return Item{}, err
		}
	}
	return Item{ID: id, Count: count, Damage: damage, NBT: nbt}, nil
}

// WriteItem writes an Item record and returns the value written.
func WriteItem(w io.Writer, it Item) (Item, error) {
	if _, err := WriteI16(w, it.ID); err != nil {
		return it, err
	}
	if it.ID < 0 {
		return it, nil
	}
	if _, err := WriteI8(w, it.Count); err != nil {
		return it, err
	}
	if _, err := WriteI16(w, it.Damage); err != nil {
		return it, err
	}
	if _, err := WriteI16(w, int16(len(it.NBT))); err != nil {
		return it, err
	}
	if len(it.NBT) > 0 {
		if _, err := WriteSpan(w, it.NBT); err != nil {
			return it, err
		}
	}
	return it, nil
}

// CopyItem reads an Item from r and mirrors its bytes to w without
// allocating an intermediate NBT buffer for the common empty/no-NBT cases.
func CopyItem(r io.Reader, w io.Writer) error {
	id, err := ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := WriteI16(w, id); err != nil {
		return err
	}
	if id < 0 {
		return nil
	}
	count, err := ReadI8(r)
	if err != nil {
		return err
	}
	if _, err := WriteI8(w, count); err != nil {
		return err
	}
	damage, err := ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := WriteI16(w, damage); err != nil {
		return err
	}
	nbtLen, err := ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := WriteI16(w, nbtLen); err != nil {
		return err
	}
	if nbtLen > 0 {
		nbt, err := ReadSpan(r, int(nbtLen))
		if err != nil {
			return err
		}
		if _, err := WriteSpan(w, nbt); err != nil {
			return err
		}
	}
	return nil
}
