package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settledb/settle-db/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr string
	}{
		{
			name:  "select all",
			input: "SELECT * FROM merchants",
			want:  Select{Table: "merchants"},
		},
		{
			name:  "select with semicolon",
			input: "SELECT * FROM merchants;",
			want:  Select{Table: "merchants"},
		},
		{
			name:  "select projection",
			input: "SELECT id, name FROM merchants",
			want:  Select{Table: "merchants", Columns: []string{"id", "name"}},
		},
		{
			name:  "select with where",
			input: "SELECT * FROM merchants WHERE id = 1",
			want: Select{
				Table:      "merchants",
				Conditions: types.Row{"id": types.Int(1)},
			},
		},
		{
			name:  "select where quoted literal normalizes to int",
			input: "SELECT * FROM merchants WHERE id = '1'",
			want: Select{
				Table:      "merchants",
				Conditions: types.Row{"id": types.Int(1)},
			},
		},
		{
			name:  "select where conjunction",
			input: "SELECT * FROM transactions WHERE merchant_id = 2 AND status = 'pending'",
			want: Select{
				Table: "transactions",
				Conditions: types.Row{
					"merchant_id": types.Int(2),
					"status":      types.String("pending"),
				},
			},
		},
		{
			name:  "select lowercase keywords",
			input: "select name from merchants where active = true",
			want: Select{
				Table:      "merchants",
				Columns:    []string{"name"},
				Conditions: types.Row{"active": types.Bool(true)},
			},
		},
		{
			name:  "select captures multi-table from clause whole",
			input: "SELECT * FROM merchants JOIN transactions",
			want:  Select{Table: "merchants JOIN transactions"},
		},
		{
			name:  "select with join and where keeps conditions",
			input: "SELECT * FROM merchants JOIN transactions WHERE id = 1",
			want: Select{
				Table:      "merchants JOIN transactions",
				Conditions: types.Row{"id": types.Int(1)},
			},
		},
		{
			name:  "create table",
			input: "CREATE TABLE merchants (id INT PRIMARY KEY, name VARCHAR(255) NOT NULL, email VARCHAR(255) UNIQUE)",
			want: CreateTable{
				Table: "merchants",
				Schema: types.Schema{Columns: []types.Column{
					{Name: "id", Type: types.TypeInt, Nullable: false, PrimaryKey: true},
					{Name: "name", Type: types.TypeVarchar, Size: 255, Nullable: false},
					{Name: "email", Type: types.TypeVarchar, Size: 255, Nullable: true, Unique: true},
				}},
			},
		},
		{
			name:  "create table with type aliases",
			input: "CREATE TABLE t (a INTEGER, b TEXT, c BOOLEAN, d FLOAT, e TIMESTAMP)",
			want: CreateTable{
				Table: "t",
				Schema: types.Schema{Columns: []types.Column{
					{Name: "a", Type: types.TypeInt, Nullable: true},
					{Name: "b", Type: types.TypeVarchar, Nullable: true},
					{Name: "c", Type: types.TypeBool, Nullable: true},
					{Name: "d", Type: types.TypeDecimal, Nullable: true},
					{Name: "e", Type: types.TypeDateTime, Nullable: true},
				}},
			},
		},
		{
			name:  "insert",
			input: "INSERT INTO merchants (id, name, active) VALUES (1, 'Acme, Inc.', TRUE)",
			want: Insert{
				Table: "merchants",
				Row: types.Row{
					"id":     types.Int(1),
					"name":   types.String("Acme, Inc."),
					"active": types.Bool(true),
				},
			},
		},
		{
			name:  "insert quoted literals drop padding outside the quotes",
			input: "INSERT INTO merchants (id, name, city) VALUES (1, 'Acme',  'Berlin')",
			want: Insert{
				Table: "merchants",
				Row: types.Row{
					"id":   types.Int(1),
					"name": types.String("Acme"),
					"city": types.String("Berlin"),
				},
			},
		},
		{
			name:  "insert quoted number stays string",
			input: "INSERT INTO t (code) VALUES ('42')",
			want: Insert{
				Table: "t",
				Row:   types.Row{"code": types.String("42")},
			},
		},
		{
			name:  "insert decimal and null",
			input: "INSERT INTO t (amount, note) VALUES (99.95, NULL)",
			want: Insert{
				Table: "t",
				Row: types.Row{
					"amount": types.Decimal(99.95),
					"note":   types.Null(),
				},
			},
		},
		{
			name:  "update with where",
			input: "UPDATE merchants SET name = 'Bob', active = FALSE WHERE id = 2",
			want: Update{
				Table: "merchants",
				Updates: types.Row{
					"name":   types.String("Bob"),
					"active": types.Bool(false),
				},
				Conditions: types.Row{"id": types.Int(2)},
			},
		},
		{
			name:  "update without where",
			input: "UPDATE merchants SET active = TRUE",
			want: Update{
				Table:   "merchants",
				Updates: types.Row{"active": types.Bool(true)},
			},
		},
		{
			name:  "delete with where",
			input: "DELETE FROM merchants WHERE id = 3",
			want: Delete{
				Table:      "merchants",
				Conditions: types.Row{"id": types.Int(3)},
			},
		},
		{
			name:  "delete without where",
			input: "DELETE FROM merchants",
			want:  Delete{Table: "merchants"},
		},
		{
			name:  "drop table",
			input: "DROP TABLE merchants",
			want:  DropTable{Table: "merchants"},
		},
		{
			name:    "unsupported statement",
			input:   "TRUNCATE TABLE merchants",
			wantErr: "unsupported SQL statement",
		},
		{
			name:    "unsupported column type",
			input:   "CREATE TABLE t (data BLOB)",
			wantErr: "unsupported data type: BLOB",
		},
		{
			name:    "arity mismatch",
			input:   "INSERT INTO t (a, b) VALUES (1)",
			wantErr: "column count (2) doesn't match value count (1)",
		},
		{
			name:    "malformed insert",
			input:   "INSERT INTO t VALUES 1",
			wantErr: "invalid INSERT syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWhereSkipsMalformedParts(t *testing.T) {
	got, err := Parse("SELECT * FROM t WHERE id = 1 AND badpart AND name = 'x'")
	require.NoError(t, err)

	sel, ok := got.(Select)
	require.True(t, ok)
	assert.Equal(t, types.Row{
		"id":   types.Int(1),
		"name": types.String("x"),
	}, sel.Conditions)
}
