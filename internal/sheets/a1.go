package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// A1Range is a parsed A1 notation range such as BUS!A1:D2.  Rows and
// columns are 1-based; zero means the bound is open (e.g. BUS!B5:B or
// BUS!A:C).
type A1Range struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseA1 parses "Sheet!A1:D2", "Sheet!D2", "'My sheet'!B:B" and ranges
// without a sheet name.
func ParseA1(s string) (A1Range, error) {
	var r A1Range
	ref := s
	if i := strings.LastIndex(s, "!"); i >= 0 {
		r.Sheet = strings.ReplaceAll(strings.Trim(s[:i], "'"), "''", "'")
		ref = s[i+1:]
	}
	if ref == "" {
		return r, fmt.Errorf("a1 range %q: missing cell reference", s)
	}
	start, end, isRange := strings.Cut(ref, ":")
	var err error
	if r.StartCol, r.StartRow, err = parseCell(start); err != nil {
		return r, fmt.Errorf("a1 range %q: %w", s, err)
	}
	if !isRange {
		r.EndCol, r.EndRow = r.StartCol, r.StartRow
		if r.StartCol == 0 || r.StartRow == 0 {
			return r, fmt.Errorf("a1 range %q: single cell needs column and row", s)
		}
		return r, nil
	}
	if r.EndCol, r.EndRow, err = parseCell(end); err != nil {
		return r, fmt.Errorf("a1 range %q: %w", s, err)
	}
	if r.StartCol == 0 {
		r.StartCol = 1
	}
	if r.StartRow == 0 {
		r.StartRow = 1
	}
	if (r.EndCol != 0 && r.EndCol < r.StartCol) || (r.EndRow != 0 && r.EndRow < r.StartRow) {
		return r, fmt.Errorf("a1 range %q: end before start", s)
	}
	return r, nil
}

// Width is the number of columns the range spans, or 0 when unbounded.
func (r A1Range) Width() int {
	if r.EndCol == 0 {
		return 0
	}
	return r.EndCol - r.StartCol + 1
}

// Height is the number of rows the range spans, or 0 when unbounded.
func (r A1Range) Height() int {
	if r.EndRow == 0 {
		return 0
	}
	return r.EndRow - r.StartRow + 1
}

func parseCell(c string) (col, row int, err error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	i := 0
	for i < len(c) && c[i] >= 'A' && c[i] <= 'Z' {
		col = col*26 + int(c[i]-'A'+1)
		i++
	}
	if i < len(c) {
		row, err = strconv.Atoi(c[i:])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid row in %q", c)
		}
	}
	if col == 0 && row == 0 {
		return 0, 0, fmt.Errorf("invalid cell %q", c)
	}
	return col, row, nil
}

// ColumnName converts a 1-based column index into letters (1 -> A, 27 -> AA).
func ColumnName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
