package parser

import "fmt"

// statementPrefix trims a statement down to the prefix reported in errors.
func statementPrefix(stmt string) string {
	const max = 50
	if len(stmt) > max {
		return stmt[:max]
	}
	return stmt
}

// SyntaxError reports a statement that matched a known verb but not its
// grammar.
type SyntaxError struct {
	Stmt   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s: %s", e.Reason, statementPrefix(e.Stmt))
}

// UnsupportedStatementError reports a statement whose verb is not part of
// the supported grammar.
type UnsupportedStatementError struct {
	Stmt string
}

func (e *UnsupportedStatementError) Error() string {
	return fmt.Sprintf("unsupported SQL statement: %s", statementPrefix(e.Stmt))
}

// UnsupportedTypeError reports an unrecognized column type name in a
// CREATE TABLE statement.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported data type: %s", e.Type)
}

// ArityMismatchError reports an INSERT whose column and value counts
// differ.
type ArityMismatchError struct {
	Columns int
	Values  int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("column count (%d) doesn't match value count (%d)", e.Columns, e.Values)
}
