// Package executor validates and dispatches parsed commands to the storage
// engine. It is the single failure boundary: every parse or storage failure
// is converted into a Result envelope and never propagates to the caller.
package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/settledb/settle-db/internal/parser"
	"github.com/settledb/settle-db/internal/storage"
	"github.com/settledb/settle-db/internal/types"
)

// Result is the uniform response envelope for every operation.
type Result struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	RowCount     int         `json:"row_count,omitempty"`
	AffectedRows *int        `json:"affected_rows,omitempty"`
	InsertedID   *int64      `json:"inserted_id,omitempty"`
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

// Executor runs statements against a storage engine.
type Executor struct {
	store *storage.Store
}

// New returns an Executor over the given store.
func New(store *storage.Store) *Executor {
	return &Executor{store: store}
}

// Execute parses and runs one statement. No failure escapes: errors and
// panics alike come back as {success: false, message}.
func (e *Executor) Execute(sql string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Sprintf("internal error: %v", r))
		}
	}()

	cmd, err := parser.Parse(sql)
	if err != nil {
		return failure(err.Error())
	}

	switch c := cmd.(type) {
	case parser.CreateTable:
		return e.executeCreateTable(c)
	case parser.Insert:
		return e.executeInsert(c)
	case parser.Select:
		return e.executeSelect(c)
	case parser.Update:
		return e.executeUpdate(c)
	case parser.Delete:
		return e.executeDelete(c)
	case parser.DropTable:
		return e.executeDropTable(c)
	default:
		return failure(fmt.Sprintf("unsupported command type %T", cmd))
	}
}

func (e *Executor) executeCreateTable(cmd parser.CreateTable) Result {
	if e.store.TableExists(cmd.Table) {
		return failure(fmt.Sprintf("Table '%s' already exists", cmd.Table))
	}

	created, err := e.store.CreateTable(cmd.Table, cmd.Schema)
	if err != nil {
		return failure(err.Error())
	}
	if !created {
		return failure("Failed to create table")
	}

	return Result{Success: true, Message: fmt.Sprintf("Table '%s' created successfully", cmd.Table)}
}

func (e *Executor) executeInsert(cmd parser.Insert) Result {
	rowID, err := e.store.InsertRow(cmd.Table, cmd.Row)
	if errors.Is(err, storage.ErrTableNotFound) {
		return failure(fmt.Sprintf("Table '%s' does not exist", cmd.Table))
	}
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Row inserted successfully with ID %d", rowID),
		InsertedID: &rowID,
	}
}

func (e *Executor) executeSelect(cmd parser.Select) Result {
	// the parser does not decompose multi-table FROM clauses; joins go
	// through the dedicated Join entry point
	if strings.Contains(strings.ToUpper(cmd.Table), "JOIN") {
		return failure("JOIN queries are not supported in SELECT; use the join operation")
	}

	rows, err := e.store.SelectRows(cmd.Table, cmd.Conditions, cmd.Columns)
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success:  true,
		Message:  fmt.Sprintf("Query returned %d row(s)", len(rows)),
		Data:     rows,
		RowCount: len(rows),
	}
}

func (e *Executor) executeUpdate(cmd parser.Update) Result {
	// unconditional bulk mutation is disallowed here, independent of the
	// parser, so structured-command callers get the same protection
	if len(cmd.Conditions) == 0 {
		return failure("UPDATE without WHERE clause is not allowed (safety measure)")
	}

	affected, err := e.store.UpdateRows(cmd.Table, cmd.Conditions, cmd.Updates)
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success:      true,
		Message:      fmt.Sprintf("Updated %d row(s)", affected),
		AffectedRows: &affected,
	}
}

func (e *Executor) executeDelete(cmd parser.Delete) Result {
	if len(cmd.Conditions) == 0 {
		return failure("DELETE without WHERE clause is not allowed (safety measure)")
	}

	affected, err := e.store.DeleteRows(cmd.Table, cmd.Conditions)
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success:      true,
		Message:      fmt.Sprintf("Deleted %d row(s)", affected),
		AffectedRows: &affected,
	}
}

func (e *Executor) executeDropTable(cmd parser.DropTable) Result {
	dropped, err := e.store.DropTable(cmd.Table)
	if err != nil {
		return failure(err.Error())
	}
	if !dropped {
		return failure(fmt.Sprintf("Table '%s' does not exist", cmd.Table))
	}

	return Result{Success: true, Message: fmt.Sprintf("Table '%s' dropped successfully", cmd.Table)}
}

// Join runs an inner hash join between two tables. Conditions filter the
// left side only, before joining. Joined rows qualify every column as
// "<table>.<column>"; the optional projection accepts either the qualified
// name or the bare column suffix.
func (e *Executor) Join(leftTable, rightTable, leftKey, rightKey string, columns []string, conditions types.Row) Result {
	leftRows, err := e.store.SelectRows(leftTable, conditions, nil)
	if err != nil {
		return failure(err.Error())
	}

	rightRows, err := e.store.SelectRows(rightTable, nil, nil)
	if err != nil {
		return failure(err.Error())
	}

	rightIndex := make(map[string][]types.Row)
	for _, row := range rightRows {
		key := row[rightKey].Key()
		rightIndex[key] = append(rightIndex[key], row)
	}

	var joined []map[string]types.Value
	for _, leftRow := range leftRows {
		matches := rightIndex[leftRow[leftKey].Key()]
		for _, rightRow := range matches {
			out := make(map[string]types.Value, len(leftRow)+len(rightRow))
			for col, v := range leftRow {
				out[leftTable+"."+col] = v
			}
			for col, v := range rightRow {
				out[rightTable+"."+col] = v
			}
			joined = append(joined, out)
		}
	}

	if columns != nil {
		projected := make([]map[string]types.Value, 0, len(joined))
		for _, row := range joined {
			out := make(map[string]types.Value, len(columns))
			for _, col := range columns {
				if v, ok := row[col]; ok {
					out[col] = v
					continue
				}
				// bare names resolve left table first, then right
				if v, ok := row[leftTable+"."+col]; ok {
					out[col] = v
					continue
				}
				if v, ok := row[rightTable+"."+col]; ok {
					out[col] = v
				}
			}
			projected = append(projected, out)
		}
		joined = projected
	}

	if joined == nil {
		joined = []map[string]types.Value{}
	}

	return Result{
		Success:  true,
		Message:  fmt.Sprintf("JOIN returned %d row(s)", len(joined)),
		Data:     joined,
		RowCount: len(joined),
	}
}

// ListTables reports every table known to the store.
func (e *Executor) ListTables() Result {
	tables, err := e.store.ListTables()
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Found %d table(s)", len(tables)),
		Data:    tables,
	}
}

// Describe returns the schema of a table.
func (e *Executor) Describe(table string) Result {
	schema, err := e.store.Schema(table)
	if errors.Is(err, storage.ErrTableNotFound) {
		return failure(fmt.Sprintf("Table '%s' does not exist", table))
	}
	if err != nil {
		return failure(err.Error())
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Schema for table '%s'", table),
		Data:    schema,
	}
}
