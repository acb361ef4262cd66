package xbase

import "github.com/pkg/errors"

// encodeFieldDescriptor writes one 32-byte field descriptor per spec.md §4.3:
// name (11 bytes, zero padded), type tag, 4 reserved bytes, width as u16 LE
// at offset 16-17 - this is the documented quirk preserved from the source
// behaviour: offset 17 is nominally the decimal-count byte, but writing
// width as u16 across 16-17 is safe because widths are capped at 254, so
// the decimal-count byte always reads back as 0 - followed by 14
// reserved/work-area/MDX bytes (offsets 18-31).
func encodeFieldDescriptor(b *byteBuffer, c Column) {
	name := make([]byte, 11)
	writeASCIIPaddedZero(name, c.Name)
	b.writeBytes(name)
	b.writeByte(byte(c.Type))
	for i := 0; i < 4; i++ {
		b.writeByte(0)
	}
	b.writeU16(uint16(c.Width))
	for i := 0; i < 14; i++ {
		b.writeByte(0)
	}
}

// decodeFieldDescriptor reads one 32-byte descriptor slot starting at
// offset. Name is scanned up to the first 0x00 byte (at most 11 bytes); the
// type tag sits at the byte immediately after the name field, and width at
// 5 bytes past that - matching the rolling-cursor layout spec.md §4.5
// describes (name_end = cursor+11, type at name_end, width at name_end+5).
func decodeFieldDescriptor(buf []byte, offset int) (Column, error) {
	if offset+fieldDescriptorSize > len(buf) {
		return Column{}, &ReadError{cause: errors.New("buffer too short for field descriptor")}
	}
	nameEnd := offset + 11
	end := nameEnd
	for i := offset; i < nameEnd; i++ {
		if buf[i] == 0 {
			end = i
			break
		}
	}
	name := string(buf[offset:end])
	typeTag := ColumnType(buf[nameEnd])
	width := int(buf[nameEnd+5])
	if !validColumnType(typeTag) {
		return Column{}, &ReadError{cause: errors.Errorf("unknown column type tag %q", string(typeTag))}
	}
	return Column{Name: name, Type: typeTag, Width: width}, nil
}

// descriptorSlotIsTerminator reports whether the byte at a descriptor
// slot's start is the 0x0D array terminator.
func descriptorSlotIsTerminator(buf []byte, offset int) bool {
	return offset < len(buf) && buf[offset] == fieldTerminator
}
