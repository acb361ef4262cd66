package xbase

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Writer materialises a Schema into DBF (and, if any memo column exists,
// DBT) byte buffers. A Writer instance accumulates DBT state across a
// single Write call; WriteDBT consumes and resets it. Reusing a Writer for
// another Write resets DBT state at the start of that call.
type Writer struct {
	Encoding EncodingConverter
	Now      func() time.Time // defaults to time.Now; overridable for deterministic tests

	dbt      *dbtBuffer
	dbfBytes []byte
	dbtBytes []byte
}

// NewWriter returns a Writer using the default UTF-8 text encoding.
func NewWriter() *Writer {
	return &Writer{Encoding: UTF8Converter()}
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Write serialises s into a DBF byte buffer and, if s has any memo-like
// column, a companion DBT byte buffer. Both results are also retained on
// the Writer: the DBT buffer is retrievable again via WriteDBT, and
// Checksum/DBTChecksum report over the retained buffers, until the next
// Write call replaces them. WriteDBT clears the retained DBT buffer, after
// which DBTChecksum returns 0.
func (w *Writer) Write(s *Schema) (dbf []byte, dbt []byte, err error) {
	w.dbt = nil
	w.dbfBytes = nil
	w.dbtBytes = nil

	if !s.Locked() {
		return nil, nil, &RowAddError{cause: errors.New("cannot write an unlocked schema")}
	}
	hasMemo := s.HasMemoColumn()
	if hasMemo {
		w.dbt = newDBTBuffer()
	}

	header := buildHeader(s, w.now())
	b := newByteBuffer(int(header.HeaderLength) + int(header.RecordLength)*s.RecordCount() + 1)
	header.encode(b)
	for _, c := range s.columns {
		encodeFieldDescriptor(b, c)
	}
	b.writeByte(fieldTerminator)

	for _, row := range s.live {
		if err := w.encodeRecord(b, s.columns, row, markerLive); err != nil {
			return nil, nil, err
		}
	}
	for _, row := range s.deleted {
		if err := w.encodeRecord(b, s.columns, row, markerDeleted); err != nil {
			return nil, nil, err
		}
	}
	b.writeByte(eofMarker)

	w.dbfBytes = b.Bytes()
	if hasMemo {
		w.dbtBytes = w.dbt.bytes()
	}
	return w.dbfBytes, w.dbtBytes, nil
}

// WriteDBT returns the accumulated DBT buffer from the most recent Write
// call and resets it, per the Writer/DBT coupling described in spec.md §5
// and §9. Returns (nil, false) if the last Write had no memo column.
func (w *Writer) WriteDBT() ([]byte, bool) {
	if w.dbtBytes == nil {
		return nil, false
	}
	out := w.dbtBytes
	w.dbtBytes = nil
	return out, true
}

// Checksum returns the xxhash64 checksum of the most recently written DBF
// buffer, for caller-side optimistic-concurrency checks - the modern
// analog of the teacher's crypto/md5 "has the file changed underneath us"
// guard in write.go's Append.
func (w *Writer) Checksum() uint64 { return xxhash.Sum64(w.dbfBytes) }

// DBTChecksum returns the xxhash64 checksum of the most recently written
// DBT buffer, or 0 if none was produced.
func (w *Writer) DBTChecksum() uint64 {
	if w.dbtBytes == nil {
		return 0
	}
	return xxhash.Sum64(w.dbtBytes)
}

func (w *Writer) encodeRecord(b *byteBuffer, columns []Column, row []string, marker byte) error {
	b.writeByte(marker)
	for i, c := range columns {
		if err := w.encodeField(b, c, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) encodeField(b *byteBuffer, c Column, value string) error {
	switch c.Type {
	case String:
		encoded := w.Encoding.Encode(value)
		if len(encoded) > c.Width {
			return &RowAddError{cause: errors.Errorf("column %q: value %q encodes to %d bytes, exceeds width %d", c.Name, value, len(encoded), c.Width)}
		}
		field := make([]byte, c.Width)
		copy(field, encoded)
		for i := len(encoded); i < c.Width; i++ {
			field[i] = 0
		}
		b.writeBytes(field)
	case Numeric:
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: %q is not a valid integer", c.Name, value)}
		}
		out, err := rightJustify(value, c.Width, ' ')
		if err != nil {
			return &RowAddError{cause: err}
		}
		b.writeBytes(out)
	case Float:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: %q is not a valid float", c.Name, value)}
		}
		out, err := rightJustify(value, c.Width, ' ')
		if err != nil {
			return &RowAddError{cause: err}
		}
		b.writeBytes(out)
	case Date:
		if len(value) != 8 {
			return &RowAddError{cause: errors.Errorf("column %q: date value %q must be exactly 8 digits", c.Name, value)}
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return &RowAddError{cause: errors.Errorf("column %q: date value %q must be all digits", c.Name, value)}
			}
		}
		b.writeBytes([]byte(value))
	case Bool:
		b.writeByte(boolFieldByte(value))
	case Memo, OLE, Binary:
		if w.dbt == nil {
			w.dbt = newDBTBuffer()
		}
		// M/G/B payloads are stored raw, never run through w.Encoding: every
		// DBT read path (ReadMemo/ReadMemosMerged/ReadMemosUnmerged) decodes
		// with a plain string conversion and has no encoding parameter, and
		// Binary/OLE content isn't text at all. Transcoding here would make
		// the writer and reader disagree about what's in the heap.
		index := w.dbt.writeMemo([]byte(value))
		out, err := rightJustify(strconv.FormatUint(uint64(index), 10), 10, '0')
		if err != nil {
			return &RowAddError{cause: err}
		}
		b.writeBytes(out)
	case Long, Autoincrement:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: %q is not a valid integer", c.Name, value)}
		}
		b.writeI32(int32(n))
	case Double:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: %q is not a valid double", c.Name, value)}
		}
		b.writeF64(f)
	case Timestamp:
		parts := strings.SplitN(value, " ", 2)
		if len(parts) != 2 {
			return &RowAddError{cause: errors.Errorf("column %q: timestamp value %q must be \"<days> <ms>\"", c.Name, value)}
		}
		days, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: bad timestamp day count %q", c.Name, parts[0])}
		}
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return &RowAddError{cause: errors.Wrapf(err, "column %q: bad timestamp millisecond offset %q", c.Name, parts[1])}
		}
		b.writeI32(int32(days))
		b.writeI32(int32(ms))
	default:
		return &RowAddError{cause: errors.Errorf("column %q: unhandled column type %q", c.Name, string(c.Type))}
	}
	return nil
}

func boolFieldByte(value string) byte {
	switch value {
	case "T", "t", "Y", "y":
		return 'T'
	case "F", "f", "N", "n":
		return 'F'
	default:
		return '?'
	}
}
