// Package sheetstest provides an in-memory stand-in for the spreadsheet
// values API, for tests of code built on the sheets gateway.
package sheetstest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/sheets"
)

// FakeValues keeps one grid of string cells per sheet.  Get mimics the
// service: trailing empty cells and rows are trimmed, interior empty rows
// come back as empty slices.  Append writes below the last occupied row of
// the table starting at the append range.
type FakeValues struct {
	// GetErr and AppendErr, when set, are returned by every call.
	GetErr    error
	AppendErr error

	mu      sync.Mutex
	grids   map[string][][]string
	appends [][]string
	options []string
}

// New returns an empty fake.
func New() *FakeValues {
	return &FakeValues{grids: make(map[string][][]string)}
}

var _ sheets.ValuesAPI = (*FakeValues)(nil)

// Set writes one cell addressed in A1 notation, e.g. Set("BUS!D2", "5").
func (f *FakeValues) Set(cell, value string) {
	r, err := sheets.ParseA1(cell)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(r.Sheet, r.StartRow, r.StartCol, value)
}

// SetRow writes consecutive cells starting at the given A1 cell.
func (f *FakeValues) SetRow(start string, values ...string) {
	r, err := sheets.ParseA1(start)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range values {
		f.put(r.Sheet, r.StartRow, r.StartCol+i, v)
	}
}

// Cell returns the value of one cell.
func (f *FakeValues) Cell(cell string) string {
	r, err := sheets.ParseA1(cell)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.at(r.Sheet, r.StartRow, r.StartCol)
}

// Appended returns every row written through Append, in order.
func (f *FakeValues) Appended() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.appends))
	for i, row := range f.appends {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// InputOptions returns the value input option of every Append call.
func (f *FakeValues) InputOptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.options...)
}

// Get implements sheets.ValuesAPI.
func (f *FakeValues) Get(_ context.Context, _ string, readRange string) (*sheetsv4.ValueRange, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	r, err := sheets.ParseA1(readRange)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	grid := f.grids[r.Sheet]
	endRow := r.EndRow
	if endRow == 0 {
		endRow = len(grid)
	}
	var rows [][]interface{}
	for rowIdx := r.StartRow; rowIdx <= endRow; rowIdx++ {
		endCol := r.EndCol
		if endCol == 0 && rowIdx-1 < len(grid) {
			endCol = len(grid[rowIdx-1])
		}
		var row []interface{}
		for col := r.StartCol; col <= endCol; col++ {
			row = append(row, f.at(r.Sheet, rowIdx, col))
		}
		rows = append(rows, trimRow(row))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return &sheetsv4.ValueRange{Range: readRange, MajorDimension: "ROWS", Values: rows}, nil
}

// Append implements sheets.ValuesAPI.
func (f *FakeValues) Append(_ context.Context, _ string, appendRange string, vr *sheetsv4.ValueRange, valueInputOption string) (*sheetsv4.AppendValuesResponse, error) {
	if f.AppendErr != nil {
		return nil, f.AppendErr
	}
	r, err := sheets.ParseA1(appendRange)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	width := r.Width()
	for _, row := range vr.Values {
		width = max(width, len(row))
	}
	target := r.StartRow
	for f.occupied(r.Sheet, target, r.StartCol, width) {
		target++
	}
	first := target
	for _, row := range vr.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
			f.put(r.Sheet, target, r.StartCol+i, cells[i])
		}
		f.appends = append(f.appends, cells)
		target++
	}
	f.options = append(f.options, valueInputOption)

	updated := fmt.Sprintf("%s!%s%d:%s%d", r.Sheet, sheets.ColumnName(r.StartCol), first, sheets.ColumnName(r.StartCol+width-1), target-1)
	return &sheetsv4.AppendValuesResponse{
		TableRange: appendRange,
		Updates:    &sheetsv4.UpdateValuesResponse{UpdatedRange: updated, UpdatedRows: int64(len(vr.Values))},
	}, nil
}

func (f *FakeValues) occupied(sheet string, row, col, width int) bool {
	for c := col; c < col+width; c++ {
		if strings.TrimSpace(f.at(sheet, row, c)) != "" {
			return true
		}
	}
	return false
}

func (f *FakeValues) at(sheet string, row, col int) string {
	grid := f.grids[sheet]
	if row-1 >= len(grid) || col-1 >= len(grid[row-1]) {
		return ""
	}
	return grid[row-1][col-1]
}

func (f *FakeValues) put(sheet string, row, col int, v string) {
	if f.grids == nil {
		f.grids = make(map[string][][]string)
	}
	grid := f.grids[sheet]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	for len(grid[row-1]) < col {
		grid[row-1] = append(grid[row-1], "")
	}
	grid[row-1][col-1] = v
	f.grids[sheet] = grid
}

func trimRow(row []interface{}) []interface{} {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	if row == nil {
		return []interface{}{}
	}
	return row
}
