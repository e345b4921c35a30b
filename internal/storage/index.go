package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/settledb/settle-db/internal/types"
)

// indexData maps a canonical value key to the row identifiers currently
// holding that value, in insertion order.
type indexData map[string][]int64

// readIndex loads an index record. A missing file reads as an absent index
// (nil map), which makes index maintenance a no-op for unindexed columns.
func (s *Store) readIndex(table, column string) (indexData, error) {
	raw, err := afero.ReadFile(s.fs, s.indexPath(table, column))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read index %s.%s: %w", table, column, err)
	}

	var idx indexData
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode index %s.%s: %w", table, column, err)
	}

	return idx, nil
}

// addToIndex records that rowID currently holds value in the column.
func (s *Store) addToIndex(table, column string, value types.Value, rowID int64) error {
	idx, err := s.readIndex(table, column)
	if err != nil {
		return err
	}
	if idx == nil {
		return nil
	}

	key := value.Key()
	idx[key] = append(idx[key], rowID)

	return s.writeJSON(s.indexPath(table, column), idx)
}

// removeFromIndex forgets rowID under value. Emptied buckets are dropped.
func (s *Store) removeFromIndex(table, column string, value types.Value, rowID int64) error {
	idx, err := s.readIndex(table, column)
	if err != nil {
		return err
	}
	if idx == nil {
		return nil
	}

	key := value.Key()
	ids := idx[key]
	for i, id := range ids {
		if id == rowID {
			idx[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(idx[key]) == 0 {
		delete(idx, key)
	}

	return s.writeJSON(s.indexPath(table, column), idx)
}

// lookupIndex returns the row identifiers holding value in the column. An
// absent index yields no ids.
func (s *Store) lookupIndex(table, column string, value types.Value) ([]int64, error) {
	idx, err := s.readIndex(table, column)
	if err != nil {
		return nil, err
	}
	return idx[value.Key()], nil
}
