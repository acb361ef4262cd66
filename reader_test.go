package xbase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSampleSchema(t *testing.T) *Schema {
	t.Helper()
	s := NewSchema()
	require.NoError(t, s.AddColumn("name", String, 10))
	require.NoError(t, s.AddColumn("qty", Numeric, 4))
	require.NoError(t, s.AddColumn("price", Float, 6))
	require.NoError(t, s.AddColumn("active", Bool, 1))
	require.NoError(t, s.AddColumn("born", Date, 8))
	require.NoError(t, s.AddColumn("seq", Long, 4))
	require.NoError(t, s.AddColumn("ratio", Double, 8))
	s.Lock()
	require.NoError(t, s.AddRow([]string{"alice", "12", "3.50", "T", "20240101", "7", "1.5"}))
	require.NoError(t, s.AddRowDeleted([]string{"bob", "99", "1.25", "F", "20231231", "8", "2.25"}))
	return s
}

func TestRoundTrip_ColumnsAndRows(t *testing.T) {
	s := buildSampleSchema(t)
	w := NewWriter()
	buf, _, err := w.Write(s)
	require.NoError(t, err)

	r := NewReader()
	got, err := r.Read(buf)
	require.NoError(t, err)

	wantCols := s.Columns()
	gotCols := got.Columns()
	require.Equal(t, len(wantCols), len(gotCols))
	for i, c := range wantCols {
		require.Equal(t, c.Name, gotCols[i].Name)
		require.Equal(t, c.Type, gotCols[i].Type)
		require.Equal(t, c.Width, gotCols[i].Width)
	}

	require.Equal(t, s.RecordCount(), got.RecordCount())
	require.Len(t, got.LiveRows(), 1)
	require.Len(t, got.DeletedRows(), 1)

	liveRow := got.LiveRows()[0]
	require.Equal(t, "alice\x00\x00\x00\x00\x00", liveRow[0]) // type C retains trailing zero padding per spec.md §4.5
	require.Equal(t, "alice", trimTrailingZeros(liveRow[0]))
	require.Equal(t, "  12", liveRow[1])
	require.Equal(t, "  3.50", liveRow[2])
	require.Equal(t, "T", liveRow[3])
	require.Equal(t, "20240101", liveRow[4])
	require.Equal(t, "7", liveRow[5])

	deletedRow := got.DeletedRows()[0]
	require.Equal(t, "bob", trimTrailingZeros(deletedRow[0]))
}

func TestReader_RejectsTamperedRecordLength(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("u", String, 2))
	s.Lock()
	require.NoError(t, s.AddRow([]string{"gg"}))

	w := NewWriter()
	buf, _, err := w.Write(s)
	require.NoError(t, err)

	tampered := append([]byte(nil), buf...)
	// spec.md §8 scenario 6: tamper bytes 10-11 to report sum-of-widths
	// instead of 1+sum-of-widths.
	tampered[10] = 2
	tampered[11] = 0

	r := NewReader()
	_, err = r.Read(tampered)
	require.Error(t, err)
	var re *ReadError
	require.ErrorAs(t, err, &re)
}

func TestReader_RejectsMissingEOF(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("u", String, 2))
	s.Lock()
	require.NoError(t, s.AddRow([]string{"gg"}))

	w := NewWriter()
	buf, _, err := w.Write(s)
	require.NoError(t, err)

	truncated := buf[:len(buf)-1]
	r := NewReader()
	_, err = r.Read(truncated)
	require.Error(t, err)
}

func TestReader_RejectsInvalidMarkerByte(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("u", String, 2))
	s.Lock()
	require.NoError(t, s.AddRow([]string{"gg"}))

	w := NewWriter()
	buf, _, err := w.Write(s)
	require.NoError(t, err)

	tampered := append([]byte(nil), buf...)
	recordStart := headerLength(1)
	tampered[recordStart] = 0x99

	r := NewReader()
	_, err = r.Read(tampered)
	require.Error(t, err)
}

func TestReader_RejectsTooShortBuffer(t *testing.T) {
	r := NewReader()
	_, err := r.Read([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestReader_FlagValidation(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("u", String, 2))
	s.Lock()
	require.NoError(t, s.AddRow([]string{"gg"}))

	w := NewWriter()
	buf, _, err := w.Write(s)
	require.NoError(t, err)

	tampered := append([]byte(nil), buf...)
	tampered[14] = 7 // incomplete-tx flag must be 0/1

	r := NewReader()
	_, err = r.Read(tampered)
	require.Error(t, err)
}
