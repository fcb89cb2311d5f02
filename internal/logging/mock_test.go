package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_ChildEntriesVisibleOnRoot(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldRow, 2).WithError(errors.New("bad amount"))

	child.Warn("row rejected", F(FieldReason, "amount"))
	root.Info("done")

	entries := root.GetEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, "WARN", entries[0].Level)
	row, ok := entries[0].FieldValue(FieldRow)
	require.True(t, ok)
	assert.Equal(t, 2, row)
	assert.EqualError(t, entries[0].Error, "bad amount")

	assert.True(t, root.HasEntry("INFO", "done"))
	assert.Len(t, root.GetEntriesByLevel("WARN"), 1)
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var m MockLogger
	m.Debug("a")
	m.WithFields(F(FieldCount, 1)).Error("b")
	m.Fatalf("c %d", 1)

	assert.Len(t, m.GetEntries(), 3)
	assert.True(t, m.HasEntry("FATAL", "c 1"))

	m.Clear()
	assert.Empty(t, m.GetEntries())
}

func TestMockLogger_SiblingFieldsIsolated(t *testing.T) {
	root := NewMockLogger()
	base := root.WithField(FieldOperation, "import")
	a := base.WithField(FieldRow, 1)
	b := base.WithField(FieldRow, 2)

	a.Info("a")
	b.Info("b")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Len(t, entries[0].Fields, 2)
	v, _ := entries[0].FieldValue(FieldRow)
	assert.Equal(t, 1, v)
	v, _ = entries[1].FieldValue(FieldRow)
	assert.Equal(t, 2, v)
}
