package xbase

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Reader decodes a DBF byte buffer into a locked Schema. Memo/OLE/Binary
// column values decode to their DBT block index as a decimal string;
// resolving the referenced content is a separate step against a DBT
// buffer via ReadMemo/ReadMemosMerged/ReadMemosUnmerged.
type Reader struct {
	Encoding EncodingConverter
}

// NewReader returns a Reader using the default UTF-8 text encoding.
func NewReader() *Reader {
	return &Reader{Encoding: UTF8Converter()}
}

// Read decodes buf into a locked Schema.
func (r *Reader) Read(buf []byte) (*Schema, error) {
	header, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	s := NewSchema()
	cursor := headerSize
	for {
		if descriptorSlotIsTerminator(buf, cursor) {
			cursor++
			break
		}
		col, err := decodeFieldDescriptor(buf, cursor)
		if err != nil {
			return nil, err
		}
		if err := s.AddColumn(col.Name, col.Type, col.Width); err != nil {
			return nil, err
		}
		cursor += fieldDescriptorSize
	}

	recordSize := 1
	for _, c := range s.Columns() {
		recordSize += c.Width
	}
	if recordSize != int(header.RecordLength) {
		return nil, &ReadError{cause: errors.Errorf("record length mismatch: computed %d from columns, header says %d", recordSize, header.RecordLength)}
	}

	s.Lock()

	if len(buf) == 0 || buf[len(buf)-1] != eofMarker {
		return nil, &ReadError{cause: errors.New("buffer does not end with EOF marker 0x1A")}
	}
	recordAreaLen := len(buf) - 1 - cursor
	if recordAreaLen%recordSize != 0 {
		return nil, &ReadError{cause: errors.Errorf("record area length %d is not a multiple of record size %d", recordAreaLen, recordSize)}
	}

	columns := s.Columns()
	numRecords := int(header.NumRecords)
	decoded := 0
	for pos := cursor; pos+recordSize <= len(buf) && decoded < numRecords; pos += recordSize {
		if buf[pos] == eofMarker {
			break
		}
		marker := buf[pos]
		if marker != markerLive && marker != markerDeleted {
			return nil, &ReadError{cause: errors.Errorf("invalid record marker byte %#x at offset %d", marker, pos)}
		}
		row, err := r.decodeRecord(buf[pos+1:pos+recordSize], columns)
		if err != nil {
			return nil, err
		}
		if marker == markerLive {
			if err := s.AddRow(row); err != nil {
				return nil, err
			}
		} else {
			if err := s.AddRowDeleted(row); err != nil {
				return nil, err
			}
		}
		decoded++
	}
	return s, nil
}

func (r *Reader) decodeRecord(data []byte, columns []Column) ([]string, error) {
	row := make([]string, len(columns))
	pos := 0
	for i, c := range columns {
		field := data[pos : pos+c.Width]
		value, err := r.decodeField(c, field)
		if err != nil {
			return nil, err
		}
		row[i] = value
		pos += c.Width
	}
	return row, nil
}

func (r *Reader) decodeField(c Column, field []byte) (string, error) {
	switch c.Type {
	case Long, Autoincrement:
		// Stringified as unsigned, matching the documented source
		// asymmetry in spec.md §4.5/§9: written as signed i32, read
		// back as u32.
		if len(field) != 4 {
			return "", &ReadError{cause: errors.Errorf("column %q: expected 4-byte field, got %d", c.Name, len(field))}
		}
		return strconv.FormatUint(uint64(readU32(field, 0)), 10), nil
	case Double:
		if len(field) != 8 {
			return "", &ReadError{cause: errors.Errorf("column %q: expected 8-byte field, got %d", c.Name, len(field))}
		}
		return strconv.FormatFloat(readF64(field, 0), 'g', -1, 64), nil
	case Timestamp:
		if len(field) != 8 {
			return "", &ReadError{cause: errors.Errorf("column %q: expected 8-byte field, got %d", c.Name, len(field))}
		}
		days := readU32(field, 0)
		ms := readU32(field, 4)
		return strconv.FormatUint(uint64(days), 10) + " " + strconv.FormatUint(uint64(ms), 10), nil
	default:
		return r.Encoding.Decode(field), nil
	}
}

// trimTrailingZeros trims trailing NUL padding from a decoded type-C
// value - the reader retains it per spec.md §4.5; callers that want it
// trimmed call this explicitly.
func trimTrailingZeros(s string) string {
	return strings.TrimRight(s, "\x00")
}
