package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settledb/settle-db/internal/types"
)

func TestFormatRows(t *testing.T) {
	rows := []types.Row{
		{
			types.IDColumn: types.Int(1),
			"name":         types.String("Alice"),
			"amount":       types.Decimal(100.5),
		},
		{
			types.IDColumn: types.Int(2),
			"name":         types.String("Bob"),
		},
	}

	out := FormatRows(rows)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)

	// identifier column first, the rest sorted
	assert.Contains(t, lines[0], types.IDColumn)
	assert.Less(t, strings.Index(lines[0], types.IDColumn), strings.Index(lines[0], "amount"))
	assert.Less(t, strings.Index(lines[0], "amount"), strings.Index(lines[0], "name"))

	assert.Contains(t, lines[2], "Alice")
	assert.Contains(t, lines[2], "100.5")

	// a value missing from a row renders as NULL
	assert.Contains(t, lines[3], "Bob")
	assert.Contains(t, lines[3], "NULL")
}

func TestFormatRowsEmpty(t *testing.T) {
	assert.Equal(t, "No rows returned.", FormatRows(nil))
}

func TestFormatSchema(t *testing.T) {
	schema := types.Schema{Columns: []types.Column{
		{Name: "id", Type: types.TypeInt, PrimaryKey: true},
		{Name: "name", Type: types.TypeVarchar, Size: 255, Nullable: false},
		{Name: "email", Type: types.TypeVarchar, Size: 100, Nullable: true, Unique: true},
		{Name: "note", Type: types.TypeVarchar, Nullable: true},
	}}

	out := FormatSchema(schema)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)

	assert.Contains(t, lines[0], "Column")
	assert.Contains(t, lines[2], "PRIMARY KEY")
	assert.Contains(t, lines[3], "VARCHAR(255)")
	assert.Contains(t, lines[3], "NOT NULL")
	assert.Contains(t, lines[4], "UNIQUE")
	assert.Contains(t, lines[5], "-")
}
