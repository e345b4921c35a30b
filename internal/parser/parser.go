// Package parser converts SQL-like statement text into structured commands.
// Parsing is purely syntactic: no table existence or schema checks happen
// here.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/settledb/settle-db/internal/types"
)

// Command is the statement-type-tagged result of parsing.
type Command interface {
	command()
}

// CreateTable creates a new table with the given schema.
type CreateTable struct {
	Table  string
	Schema types.Schema
}

// Insert adds one row to a table.
type Insert struct {
	Table string
	Row   types.Row
}

// Select reads rows from a table. Columns is nil for `*`; Conditions is nil
// when there is no WHERE clause.
type Select struct {
	Table      string
	Columns    []string
	Conditions types.Row
}

// Update rewrites matching rows.
type Update struct {
	Table      string
	Updates    types.Row
	Conditions types.Row
}

// Delete removes matching rows.
type Delete struct {
	Table      string
	Conditions types.Row
}

// DropTable removes a table and its indexes.
type DropTable struct {
	Table string
}

func (CreateTable) command() {}
func (Insert) command()      {}
func (Select) command()      {}
func (Update) command()      {}
func (Delete) command()      {}
func (DropTable) command()   {}

var (
	createTableRe = regexp.MustCompile(`(?is)^CREATE TABLE\s+(\w+)\s*\((.*)\)`)
	columnTypeRe  = regexp.MustCompile(`^(\w+)(?:\((\d+)\))?`)
	insertRe      = regexp.MustCompile(`(?is)^INSERT INTO\s+(\w+)\s*\((.*?)\)\s*VALUES\s*\((.*?)\)`)
	selectRe      = regexp.MustCompile(`(?is)^SELECT\s+(.*?)\s+FROM\s+(.*?)(?:\s+(?:WHERE|ORDER BY|LIMIT)\s.*)?$`)
	whereRe       = regexp.MustCompile(`(?is)WHERE\s+(.*?)(?:ORDER BY|LIMIT|$)`)
	updateRe      = regexp.MustCompile(`(?is)^UPDATE\s+(\w+)\s+SET\s+(.*?)(?:\s+WHERE\s+(.*))?$`)
	deleteRe      = regexp.MustCompile(`(?is)^DELETE FROM\s+(\w+)(?:\s+WHERE\s+(.*))?$`)
	dropTableRe   = regexp.MustCompile(`(?i)^DROP TABLE\s+(\w+)`)
	andSplitRe    = regexp.MustCompile(`(?i)\s+AND\s+`)
	conditionRe   = regexp.MustCompile(`(?s)^(\w+)\s*=\s*(.+)$`)
)

// Parse converts statement text into a Command. Keywords are matched
// case-insensitively and a trailing semicolon is stripped.
func Parse(sql string) (Command, error) {
	stmt := strings.TrimSpace(sql)
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))

	upper := strings.ToUpper(stmt)

	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return parseCreateTable(stmt)
	case strings.HasPrefix(upper, "INSERT INTO"):
		return parseInsert(stmt)
	case strings.HasPrefix(upper, "SELECT"):
		return parseSelect(stmt)
	case strings.HasPrefix(upper, "UPDATE"):
		return parseUpdate(stmt)
	case strings.HasPrefix(upper, "DELETE FROM"):
		return parseDelete(stmt)
	case strings.HasPrefix(upper, "DROP TABLE"):
		return parseDropTable(stmt)
	default:
		return nil, &UnsupportedStatementError{Stmt: stmt}
	}
}

func parseCreateTable(stmt string) (Command, error) {
	m := createTableRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid CREATE TABLE syntax"}
	}

	cmd := CreateTable{Table: m[1]}

	for _, colDef := range splitColumnDefs(m[2]) {
		col, err := parseColumnDef(stmt, colDef)
		if err != nil {
			return nil, err
		}
		cmd.Schema.Columns = append(cmd.Schema.Columns, col)
	}

	return cmd, nil
}

// splitColumnDefs splits column definitions on top-level commas only, so a
// size suffix like VARCHAR(255) stays attached to its column.
func splitColumnDefs(s string) []string {
	var defs []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				defs = append(defs, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		defs = append(defs, strings.TrimSpace(current.String()))
	}

	return defs
}

func parseColumnDef(stmt, colDef string) (types.Column, error) {
	parts := strings.Fields(colDef)
	if len(parts) < 2 {
		return types.Column{}, &SyntaxError{Stmt: stmt, Reason: "invalid column definition: " + colDef}
	}

	m := columnTypeRe.FindStringSubmatch(parts[1])
	if m == nil {
		return types.Column{}, &SyntaxError{Stmt: stmt, Reason: "invalid data type: " + parts[1]}
	}

	colType, ok := types.ParseColumnType(m[1])
	if !ok {
		return types.Column{}, &UnsupportedTypeError{Type: strings.ToUpper(m[1])}
	}

	col := types.Column{
		Name:     parts[0],
		Type:     colType,
		Nullable: true,
	}

	if m[2] != "" {
		size, err := strconv.Atoi(m[2])
		if err != nil {
			return types.Column{}, &SyntaxError{Stmt: stmt, Reason: "invalid size for column " + parts[0]}
		}
		col.Size = size
	}

	constraints := strings.ToUpper(strings.Join(parts[2:], " "))
	if strings.Contains(constraints, "PRIMARY KEY") {
		col.PrimaryKey = true
		col.Nullable = false
	}
	if strings.Contains(constraints, "UNIQUE") {
		col.Unique = true
	}
	if strings.Contains(constraints, "NOT NULL") {
		col.Nullable = false
	}

	return col, nil
}

func parseInsert(stmt string) (Command, error) {
	m := insertRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid INSERT syntax"}
	}

	var columns []string
	for _, col := range strings.Split(m[2], ",") {
		columns = append(columns, strings.TrimSpace(col))
	}

	values := splitValues(m[3])

	if len(columns) != len(values) {
		return nil, &ArityMismatchError{Columns: len(columns), Values: len(values)}
	}

	row := make(types.Row, len(columns))
	for i, col := range columns {
		row[col] = values[i]
	}

	return Insert{Table: m[1], Row: row}, nil
}

// splitValues parses a VALUES list, honoring single- and double-quoted
// strings that may contain commas. Quoted tokens are always strings;
// unquoted tokens go through literal normalization.
func splitValues(s string) []types.Value {
	var values []types.Value
	var current []rune
	inString := false
	var quote rune

	for _, ch := range s {
		switch {
		case (ch == '\'' || ch == '"') && !inString:
			inString = true
			quote = ch
			// padding between a comma and the opening quote is not
			// part of the literal
			if strings.TrimSpace(string(current)) == "" {
				current = current[:0]
			}
		case inString && ch == quote:
			inString = false
			quote = 0
			values = append(values, types.String(string(current)))
			current = current[:0]
		case ch == ',' && !inString:
			if len(current) > 0 {
				values = append(values, types.NormalizeLiteral(string(current)))
				current = current[:0]
			}
		default:
			if inString || (ch != '\'' && ch != '"') {
				current = append(current, ch)
			}
		}
	}

	if len(current) > 0 {
		values = append(values, types.NormalizeLiteral(string(current)))
	}

	return values
}

func parseSelect(stmt string) (Command, error) {
	m := selectRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid SELECT syntax"}
	}

	// the FROM target is captured whole, so a multi-table clause like
	// "a JOIN b" survives into Table for the executor to reject
	cmd := Select{Table: strings.TrimSpace(m[2])}

	columnsStr := strings.TrimSpace(m[1])
	if columnsStr != "*" {
		for _, col := range strings.Split(columnsStr, ",") {
			cmd.Columns = append(cmd.Columns, strings.TrimSpace(col))
		}
	}

	if w := whereRe.FindStringSubmatch(stmt); w != nil {
		cmd.Conditions = parseWhere(w[1])
	}

	return cmd, nil
}

// parseWhere handles conjunctions of column = literal tests. Parts that do
// not look like an equality test are skipped.
func parseWhere(whereStr string) types.Row {
	conditions := types.Row{}

	for _, part := range andSplitRe.Split(whereStr, -1) {
		m := conditionRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		conditions[m[1]] = types.NormalizeLiteral(stripQuotes(strings.TrimSpace(m[2])))
	}

	return conditions
}

func stripQuotes(s string) string {
	if len(s) >= 2 && isQuote(s[0]) && isQuote(s[len(s)-1]) {
		return s[1 : len(s)-1]
	}
	return s
}

func isQuote(b byte) bool {
	return b == '\'' || b == '"'
}

func parseUpdate(stmt string) (Command, error) {
	m := updateRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid UPDATE syntax"}
	}

	cmd := Update{Table: m[1], Updates: types.Row{}}

	for _, part := range strings.Split(m[2], ",") {
		sm := conditionRe.FindStringSubmatch(strings.TrimSpace(part))
		if sm == nil {
			continue
		}
		cmd.Updates[sm[1]] = types.NormalizeLiteral(stripQuotes(strings.TrimSpace(sm[2])))
	}

	if m[3] != "" {
		cmd.Conditions = parseWhere(m[3])
	}

	return cmd, nil
}

func parseDelete(stmt string) (Command, error) {
	m := deleteRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid DELETE syntax"}
	}

	cmd := Delete{Table: m[1]}
	if m[2] != "" {
		cmd.Conditions = parseWhere(m[2])
	}

	return cmd, nil
}

func parseDropTable(stmt string) (Command, error) {
	m := dropTableRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &SyntaxError{Stmt: stmt, Reason: "invalid DROP TABLE syntax"}
	}

	return DropTable{Table: m[1]}, nil
}
