package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settledb/settle-db/internal/types"
)

func TestParquetSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	createMerchants(t, store)

	_, err := store.InsertRow("merchants", types.Row{
		"id":     types.Int(1),
		"name":   types.String("Alice"),
		"email":  types.String("alice@example.com"),
		"active": types.Bool(true),
	})
	require.NoError(t, err)
	_, err = store.InsertRow("merchants", types.Row{
		"id":   types.Int(2),
		"name": types.String("Bob"),
	})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, store.ExportParquet(dir))

	_, err = os.Stat(filepath.Join(dir, "merchants.parquet"))
	require.NoError(t, err)

	rows, err := NewParquetReader(dir).ReadTable("merchants")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, types.Int(1), rows[0][types.IDColumn])
	assert.Equal(t, types.String("Alice"), rows[0]["name"])
	assert.Equal(t, types.Bool(true), rows[0]["active"])
	assert.True(t, rows[1]["email"].IsNull())
}

func TestParquetSkipsEmptyTables(t *testing.T) {
	store := newTestStore(t)
	createMerchants(t, store)

	dir := t.TempDir()
	require.NoError(t, store.ExportParquet(dir))

	_, err := os.Stat(filepath.Join(dir, "merchants.parquet"))
	assert.True(t, os.IsNotExist(err))
}

func TestParquetMissingSnapshotIsEmpty(t *testing.T) {
	rows, err := NewParquetReader(t.TempDir()).ReadTable("nothing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExportSkipsMissingDataDir(t *testing.T) {
	store, err := New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	require.NoError(t, store.ExportParquet(t.TempDir()))
}
