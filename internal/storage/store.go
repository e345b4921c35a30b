// Package storage owns the on-disk table and index state. Each table is one
// JSON record holding {schema, rows, next_id}; each indexed column is one
// JSON record mapping canonical value keys to row identifier lists. Every
// mutating call rewrites the touched record in full through a temp-file +
// rename, so a single call is crash-atomic; there is no isolation between
// concurrent callers and no transaction spanning multiple calls.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/settledb/settle-db/internal/types"
)

const (
	tableExt   = ".json"
	indexesDir = "indexes"
)

// ErrTableNotFound is returned by operations that require the table record
// to exist.
var ErrTableNotFound = errors.New("table does not exist")

// NullConstraintError reports a NULL written into a non-nullable column.
type NullConstraintError struct {
	Column string
}

func (e *NullConstraintError) Error() string {
	return fmt.Sprintf("column '%s' cannot be NULL", e.Column)
}

// UniqueConstraintError reports a duplicate value on a unique or
// primary-key column at insert time.
type UniqueConstraintError struct {
	Column string
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("unique constraint violation on column '%s'", e.Column)
}

// tableData is the persisted form of a table.
type tableData struct {
	Schema types.Schema `json:"schema"`
	Rows   []types.Row  `json:"rows"`
	NextID int64        `json:"next_id"`
}

// Store is a file-backed storage engine rooted at one data directory.
// Callers construct one Store per directory; there is no ambient global
// state, which keeps test fixtures isolated.
type Store struct {
	fs       afero.Fs
	dataDir  string
	indexDir string
}

// New creates the base directories and returns a Store over them.
func New(fs afero.Fs, dataDir string) (*Store, error) {
	s := &Store{
		fs:       fs,
		dataDir:  dataDir,
		indexDir: filepath.Join(dataDir, indexesDir),
	}

	if err := fs.MkdirAll(s.indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}

	return s, nil
}

// DataDir returns the directory the store persists into.
func (s *Store) DataDir() string { return s.dataDir }

func (s *Store) tablePath(table string) string {
	return filepath.Join(s.dataDir, table+tableExt)
}

func (s *Store) indexPath(table, column string) string {
	return filepath.Join(s.indexDir, table+"_"+column+tableExt)
}

// TableExists reports whether the table record is present.
func (s *Store) TableExists(table string) bool {
	_, err := s.fs.Stat(s.tablePath(table))
	return err == nil
}

// CreateTable persists an empty table and builds an index for every unique
// or primary-key column. It reports false, without error, when the name is
// already taken.
func (s *Store) CreateTable(table string, schema types.Schema) (bool, error) {
	if s.TableExists(table) {
		return false, nil
	}

	// primary key implies NOT NULL, no matter what the caller supplied
	for i, col := range schema.Columns {
		if col.PrimaryKey {
			schema.Columns[i].Nullable = false
		}
	}

	data := tableData{
		Schema: schema,
		Rows:   []types.Row{},
		NextID: 1,
	}

	if err := s.writeJSON(s.tablePath(table), data); err != nil {
		return false, fmt.Errorf("failed to persist table %s: %w", table, err)
	}

	for _, col := range schema.IndexedColumns() {
		if err := s.writeJSON(s.indexPath(table, col.Name), indexData{}); err != nil {
			return false, fmt.Errorf("failed to create index on %s.%s: %w", table, col.Name, err)
		}
	}

	return true, nil
}

// DropTable removes the table record and every index belonging to it. The
// index file set comes from the table's own schema, so a sibling table whose
// name shares a prefix keeps its indexes.
func (s *Store) DropTable(table string) (bool, error) {
	data, err := s.readTable(table)
	if errors.Is(err, ErrTableNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.fs.Remove(s.tablePath(table)); err != nil {
		return false, fmt.Errorf("failed to remove table %s: %w", table, err)
	}

	for _, col := range data.Schema.IndexedColumns() {
		if err := s.fs.Remove(s.indexPath(table, col.Name)); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to remove index %s.%s: %w", table, col.Name, err)
		}
	}

	return true, nil
}

// Schema returns the schema of the table, or ErrTableNotFound.
func (s *Store) Schema(table string) (types.Schema, error) {
	data, err := s.readTable(table)
	if err != nil {
		return types.Schema{}, err
	}
	return data.Schema, nil
}

// InsertRow validates constraints, assigns the next row identifier, appends
// the row, maintains indexes and persists the table. Columns supplied but
// absent from the schema are ignored; schema columns not supplied are
// stored as NULL.
func (s *Store) InsertRow(table string, rowData types.Row) (int64, error) {
	data, err := s.readTable(table)
	if err != nil {
		return 0, err
	}

	row := types.Row{types.IDColumn: types.Int(data.NextID)}

	for _, col := range data.Schema.Columns {
		value := rowData[col.Name]

		if value.IsNull() && !col.Nullable {
			return 0, &NullConstraintError{Column: col.Name}
		}

		if col.Indexed() && !value.IsNull() {
			existing, err := s.lookupIndex(table, col.Name, value)
			if err != nil {
				return 0, err
			}
			if len(existing) > 0 {
				return 0, &UniqueConstraintError{Column: col.Name}
			}
		}

		row[col.Name] = value
	}

	rowID := data.NextID
	data.Rows = append(data.Rows, row)
	data.NextID++

	for _, col := range data.Schema.IndexedColumns() {
		if value := row[col.Name]; !value.IsNull() {
			if err := s.addToIndex(table, col.Name, value, rowID); err != nil {
				return 0, err
			}
		}
	}

	if err := s.writeJSON(s.tablePath(table), data); err != nil {
		return 0, fmt.Errorf("failed to persist table %s: %w", table, err)
	}

	return rowID, nil
}

// SelectRows returns a point-in-time snapshot of the rows matching the
// conjunctive equality conditions, projected onto columns when given. A
// missing table yields an empty result, not an error. Matching is a full
// linear scan; indexes are not consulted.
func (s *Store) SelectRows(table string, conditions types.Row, columns []string) ([]types.Row, error) {
	data, err := s.readTable(table)
	if errors.Is(err, ErrTableNotFound) {
		return []types.Row{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := data.Rows

	if len(conditions) > 0 {
		filtered := make([]types.Row, 0, len(rows))
		for _, row := range rows {
			if row.Matches(conditions) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if columns == nil {
		return rows, nil
	}

	// a requested column missing from a row is silently omitted, so
	// projected rows can have heterogeneous key sets
	projected := make([]types.Row, 0, len(rows))
	for _, row := range rows {
		out := make(types.Row, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				out[col] = v
			}
		}
		projected = append(projected, out)
	}

	return projected, nil
}

// UpdateRows applies updates to every row matching conditions and returns
// the affected count. Indexed columns named in updates have their old value
// removed from the index before the update and the new value re-inserted
// after (skipped when the new value is NULL). Uniqueness is NOT re-checked:
// an update can create duplicate values in a unique-indexed column. Update
// keys absent from the schema are ignored.
func (s *Store) UpdateRows(table string, conditions, updates types.Row) (int, error) {
	data, err := s.readTable(table)
	if errors.Is(err, ErrTableNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0

	for _, row := range data.Rows {
		if !row.Matches(conditions) {
			continue
		}

		rowID := row[types.IDColumn].AsInt()

		for _, col := range data.Schema.IndexedColumns() {
			if _, touched := updates[col.Name]; !touched {
				continue
			}
			if old := row[col.Name]; !old.IsNull() {
				if err := s.removeFromIndex(table, col.Name, old, rowID); err != nil {
					return count, err
				}
			}
		}

		for col, value := range updates {
			if data.Schema.Has(col) {
				row[col] = value
			}
		}

		for _, col := range data.Schema.IndexedColumns() {
			if _, touched := updates[col.Name]; !touched {
				continue
			}
			if updated := row[col.Name]; !updated.IsNull() {
				if err := s.addToIndex(table, col.Name, updated, rowID); err != nil {
					return count, err
				}
			}
		}

		count++
	}

	if err := s.writeJSON(s.tablePath(table), data); err != nil {
		return count, fmt.Errorf("failed to persist table %s: %w", table, err)
	}

	return count, nil
}

// DeleteRows removes every row matching conditions, unhooking each from all
// indexes, and returns the affected count.
func (s *Store) DeleteRows(table string, conditions types.Row) (int, error) {
	data, err := s.readTable(table)
	if errors.Is(err, ErrTableNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	kept := make([]types.Row, 0, len(data.Rows))
	count := 0

	for _, row := range data.Rows {
		if !row.Matches(conditions) {
			kept = append(kept, row)
			continue
		}

		rowID := row[types.IDColumn].AsInt()
		for _, col := range data.Schema.IndexedColumns() {
			if value := row[col.Name]; !value.IsNull() {
				if err := s.removeFromIndex(table, col.Name, value, rowID); err != nil {
					return count, err
				}
			}
		}

		count++
	}

	data.Rows = kept

	if err := s.writeJSON(s.tablePath(table), data); err != nil {
		return count, fmt.Errorf("failed to persist table %s: %w", table, err)
	}

	return count, nil
}

// ListTables returns the name of every table in the data directory.
func (s *Store) ListTables() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	tables := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), tableExt) {
			tables = append(tables, strings.TrimSuffix(entry.Name(), tableExt))
		}
	}

	return tables, nil
}

func (s *Store) readTable(table string) (*tableData, error) {
	raw, err := afero.ReadFile(s.fs, s.tablePath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	var data tableData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", table, err)
	}

	return &data, nil
}

// writeJSON rewrites a record in full: marshal, write a temp file, then
// rename into place so a crash mid-write never leaves a half-written
// record.
func (s *Store) writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
