package types

import "strings"

// ColumnType is one of the five storable column types. Parsers accept a few
// aliases (INTEGER, TEXT, BOOLEAN, FLOAT, TIMESTAMP) that normalize onto
// these.
type ColumnType string

const (
	TypeInt      ColumnType = "INT"
	TypeVarchar  ColumnType = "VARCHAR"
	TypeBool     ColumnType = "BOOL"
	TypeDecimal  ColumnType = "DECIMAL"
	TypeDateTime ColumnType = "DATETIME"
)

var columnTypeAliases = map[string]ColumnType{
	"INT":       TypeInt,
	"INTEGER":   TypeInt,
	"VARCHAR":   TypeVarchar,
	"TEXT":      TypeVarchar,
	"BOOL":      TypeBool,
	"BOOLEAN":   TypeBool,
	"DECIMAL":   TypeDecimal,
	"FLOAT":     TypeDecimal,
	"DATETIME":  TypeDateTime,
	"TIMESTAMP": TypeDateTime,
}

// ParseColumnType resolves a type name or alias, case-insensitively.
func ParseColumnType(name string) (ColumnType, bool) {
	t, ok := columnTypeAliases[strings.ToUpper(name)]
	return t, ok
}

// Column describes a single column of a table schema.
type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Size       int        `json:"size,omitempty"`
	Nullable   bool       `json:"nullable"`
	Unique     bool       `json:"unique"`
	PrimaryKey bool       `json:"primary_key"`
}

// Indexed reports whether the column gets a secondary index.
func (c Column) Indexed() bool {
	return c.Unique || c.PrimaryKey
}

// Schema is the ordered column list of a table. It is immutable after
// table creation.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Column returns the definition for name, if present.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Has reports whether the schema defines name.
func (s Schema) Has(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// IndexedColumns returns the columns that carry a secondary index, in
// schema order.
func (s Schema) IndexedColumns() []Column {
	var cols []Column
	for _, c := range s.Columns {
		if c.Indexed() {
			cols = append(cols, c)
		}
	}
	return cols
}

// IDColumn is the engine-assigned row identifier key. It is unique within a
// table, monotonically increasing and never reused.
const IDColumn = "_id"

// Row maps column names to typed values. The engine stores the row
// identifier under IDColumn alongside user columns.
type Row map[string]Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Matches reports whether every condition key equals the row's value for
// that key. A key absent from the row matches only a NULL condition value.
func (r Row) Matches(conditions Row) bool {
	for col, want := range conditions {
		if !r[col].Equal(want) {
			return false
		}
	}
	return true
}
