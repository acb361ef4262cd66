package xbase

import "github.com/pkg/errors"

// Schema owns a column list and two disjoint row lists (live, tombstoned).
//
// Lifecycle: created empty via NewSchema; columns appended until Lock;
// thereafter rows appended until handed to a Writer. There is no API to
// unlock, delete, or mutate existing rows/columns once added.
type Schema struct {
	columns []Column
	locked  bool
	live    [][]string
	deleted [][]string
}

// NewSchema returns an empty, unlocked Schema.
func NewSchema() *Schema {
	return &Schema{}
}

// CanAddColumns reports whether the schema is still unlocked.
func (s *Schema) CanAddColumns() bool { return !s.locked }

// Columns returns the schema's column list in insertion order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// AddColumn appends a column. Rejected once the schema is locked, or if the
// name/type/width fail the invariants described in NewColumn.
func (s *Schema) AddColumn(name string, t ColumnType, width int) error {
	if s.locked {
		return &ColumnAddError{cause: errors.Errorf("schema is locked: cannot add column %q", name)}
	}
	col, err := NewColumn(name, t, width)
	if err != nil {
		return err
	}
	s.columns = append(s.columns, col)
	return nil
}

// Lock freezes the column list. Idempotent.
func (s *Schema) Lock() {
	s.locked = true
}

// Locked reports whether Lock has been called.
func (s *Schema) Locked() bool { return s.locked }

func (s *Schema) validateRow(values []string) error {
	if !s.locked {
		return &RowAddError{cause: errors.New("schema is not locked: cannot add rows yet")}
	}
	if len(values) != len(s.columns) {
		return &RowAddError{cause: errors.Errorf("row has %d values, schema has %d columns", len(values), len(s.columns))}
	}
	return nil
}

// AddRow appends a live row. values must have exactly len(Columns()) entries
// and the schema must be locked.
func (s *Schema) AddRow(values []string) error {
	if err := s.validateRow(values); err != nil {
		return err
	}
	row := make([]string, len(values))
	copy(row, values)
	s.live = append(s.live, row)
	return nil
}

// AddRowDeleted appends a tombstoned row - retained in the file but marked
// deleted (0x2A) rather than live (0x20).
func (s *Schema) AddRowDeleted(values []string) error {
	if err := s.validateRow(values); err != nil {
		return err
	}
	row := make([]string, len(values))
	copy(row, values)
	s.deleted = append(s.deleted, row)
	return nil
}

// LiveRows returns the live (non-deleted) rows in append order.
func (s *Schema) LiveRows() [][]string {
	out := make([][]string, len(s.live))
	for i, r := range s.live {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// DeletedRows returns the tombstoned rows in append order.
func (s *Schema) DeletedRows() [][]string {
	out := make([][]string, len(s.deleted))
	for i, r := range s.deleted {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// RecordCount is the total of live and deleted rows, matching the DBF
// header's record-count field.
func (s *Schema) RecordCount() int {
	return len(s.live) + len(s.deleted)
}

// RecordWidth is 1 (the live/deleted marker byte) plus the sum of all
// column widths - the on-disk byte length of one record.
func (s *Schema) RecordWidth() int {
	total := 1
	for _, c := range s.columns {
		total += c.Width
	}
	return total
}

// HasMemoColumn reports whether any column is Memo, OLE, or Binary -
// determines the DBF version byte (0x83 vs 0x03) and whether a DBT
// companion buffer is produced on write.
func (s *Schema) HasMemoColumn() bool {
	for _, c := range s.columns {
		if isMemoLike(c.Type) {
			return true
		}
	}
	return false
}
