package xbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_AddColumnRejectedAfterLock(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	s.Lock()

	err := s.AddColumn("b", String, 4)
	require.Error(t, err)
	var cae *ColumnAddError
	require.ErrorAs(t, err, &cae)
}

func TestSchema_AddRowRejectedBeforeLock(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))

	err := s.AddRow([]string{"abcd"})
	require.Error(t, err)
	var rae *RowAddError
	require.ErrorAs(t, err, &rae)
}

func TestSchema_AddRowArityMismatch(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	require.NoError(t, s.AddColumn("b", String, 4))
	s.Lock()

	err := s.AddRow([]string{"only-one"})
	require.Error(t, err)
	var rae *RowAddError
	require.ErrorAs(t, err, &rae)
}

func TestSchema_LiveAndDeletedRowsAreDisjoint(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	s.Lock()

	require.NoError(t, s.AddRow([]string{"aa"}))
	require.NoError(t, s.AddRowDeleted([]string{"bb"}))

	assert.Equal(t, [][]string{{"aa"}}, s.LiveRows())
	assert.Equal(t, [][]string{{"bb"}}, s.DeletedRows())
	assert.Equal(t, 2, s.RecordCount())
}

func TestSchema_RecordWidth(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	require.NoError(t, s.AddColumn("b", Numeric, 6))
	s.Lock()
	assert.Equal(t, 1+4+6, s.RecordWidth())
}

func TestSchema_HasMemoColumn(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	assert.False(t, s.HasMemoColumn())

	require.NoError(t, s.AddColumn("m", Memo, 10))
	assert.True(t, s.HasMemoColumn())
}

func TestSchema_CanAddColumns(t *testing.T) {
	s := NewSchema()
	assert.True(t, s.CanAddColumns())
	s.Lock()
	assert.False(t, s.CanAddColumns())
}

func TestSchema_RowMutationsAreCopied(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.AddColumn("a", String, 4))
	s.Lock()

	values := []string{"aa"}
	require.NoError(t, s.AddRow(values))
	values[0] = "zz"

	assert.Equal(t, "aa", s.LiveRows()[0][0])
}
