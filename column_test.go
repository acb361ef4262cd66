package xbase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumn_DefaultWidthCorrection(t *testing.T) {
	cases := []struct {
		t     ColumnType
		width int
		want  int
	}{
		{Date, 99, 8},
		{Bool, 5, 1},
		{Memo, 1, 10},
		{OLE, 1, 10},
		{Binary, 1, 10},
		{Long, 99, 4},
		{Autoincrement, 99, 4},
		{Double, 99, 8},
		{Timestamp, 99, 8},
	}
	for _, c := range cases {
		col, err := NewColumn("f", c.t, c.width)
		require.NoError(t, err)
		assert.Equal(t, c.want, col.Width, "type %q", string(c.t))
	}
}

func TestNewColumn_StringFloatNumericKeepCallerWidth(t *testing.T) {
	for _, ct := range []ColumnType{String, Float, Numeric} {
		col, err := NewColumn("f", ct, 37)
		require.NoError(t, err)
		assert.Equal(t, 37, col.Width)
	}
}

func TestNewColumn_WidthOutOfRange(t *testing.T) {
	_, err := NewColumn("f", String, 0)
	require.Error(t, err)
	var cae *ColumnAddError
	require.ErrorAs(t, err, &cae)

	_, err = NewColumn("f", String, 255)
	require.Error(t, err)
	require.ErrorAs(t, err, &cae)
}

func TestNewColumn_EmptyName(t *testing.T) {
	_, err := NewColumn("   ", String, 10)
	require.Error(t, err)
}

func TestNewColumn_NameTooLong(t *testing.T) {
	_, err := NewColumn(string(make([]byte, 40)), String, 10)
	require.Error(t, err)
}

func TestNewColumn_UnknownType(t *testing.T) {
	_, err := NewColumn("f", ColumnType('Z'), 10)
	require.Error(t, err)
}

func TestBoolDBFRoundTrip(t *testing.T) {
	assert.Equal(t, byte('T'), BoolToDBF(true))
	assert.Equal(t, byte('F'), BoolToDBF(false))

	v, known := DBFToBool('T')
	assert.True(t, known)
	assert.True(t, v)

	v, known = DBFToBool('N')
	assert.True(t, known)
	assert.False(t, v)

	_, known = DBFToBool('?')
	assert.False(t, known)

	_, known = DBFToBool(' ')
	assert.False(t, known)
}

func TestDateDBFRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC)
	s := DateToDBF(d)
	assert.Equal(t, "20241219", s)

	parsed, err := DBFToDate(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(d))
}

func TestTimestampRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 19, 7, 25, 6, 0, time.UTC)
	s := DateToTimestamp(d)

	parsed, err := TimestampToDate(s)
	require.NoError(t, err)
	assert.Equal(t, d.Year(), parsed.Year())
	assert.Equal(t, d.Month(), parsed.Month())
	assert.Equal(t, d.Day(), parsed.Day())
	assert.Equal(t, d.Hour(), parsed.Hour())
	assert.Equal(t, d.Minute(), parsed.Minute())
	assert.Equal(t, d.Second(), parsed.Second())
}

func TestTimestampMillisecondMath(t *testing.T) {
	d := time.Date(2024, 12, 19, 7, 25, 6, 0, time.UTC)
	s := DateToTimestamp(d)
	// ms = (7*3600 + 25*60 + 6) * 1000, per spec.md §8 scenario 5.
	assert.Contains(t, s, " 26706000")
}
