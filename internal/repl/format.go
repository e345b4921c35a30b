package repl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/settledb/settle-db/internal/types"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	headerStyle = lipgloss.NewStyle().
			Bold(true)
)

// FormatRows renders rows as a fixed-width text table. Columns are the
// union of keys across all rows, so projected rows with heterogeneous
// keys still line up; a value missing from a row renders as NULL.
func FormatRows(rows []types.Row) string {
	if len(rows) == 0 {
		return "No rows returned."
	}

	var headers []string
	seen := map[string]bool{}

	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				headers = append(headers, col)
			}
		}
	}
	orderHeaders(headers)

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(headers))
		for j, col := range headers {
			cells[i][j] = cellText(row, col)
		}
	}

	return renderTable(headers, cells)
}

// FormatSchema renders a table schema as a column/type/constraints table.
func FormatSchema(schema types.Schema) string {
	headers := []string{"Column", "Type", "Constraints"}
	cells := make([][]string, 0, len(schema.Columns))

	for _, col := range schema.Columns {
		var constraints []string
		if col.PrimaryKey {
			constraints = append(constraints, "PRIMARY KEY")
		}
		if col.Unique {
			constraints = append(constraints, "UNIQUE")
		}
		if !col.Nullable {
			constraints = append(constraints, "NOT NULL")
		}

		display := "-"
		if len(constraints) > 0 {
			display = strings.Join(constraints, ", ")
		}

		typeName := string(col.Type)
		if col.Size > 0 {
			typeName = fmt.Sprintf("%s(%d)", col.Type, col.Size)
		}

		cells = append(cells, []string{col.Name, typeName, display})
	}

	return renderTable(headers, cells)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = pad(h, widths[i])
	}
	headerLine := strings.Join(headerCells, " | ")
	b.WriteString(headerStyle.Render(headerLine))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(headerLine)))

	for _, row := range rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = pad(cell, widths[i])
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(padded, " | "))
	}

	return b.String()
}

func cellText(row types.Row, col string) string {
	v, ok := row[col]
	if !ok {
		return "NULL"
	}
	return v.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// orderHeaders sorts columns by name with the row identifier pinned
// first, so rendering is stable across runs.
func orderHeaders(headers []string) {
	sort.Slice(headers, func(i, j int) bool {
		if headers[i] == types.IDColumn {
			return headers[j] != types.IDColumn
		}
		if headers[j] == types.IDColumn {
			return false
		}
		return headers[i] < headers[j]
	})
}
