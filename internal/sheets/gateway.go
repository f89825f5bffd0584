// Package sheets treats a Google Sheets spreadsheet as the seat inventory of
// the reservation process.  The Gateway reads and appends fixed, configured
// ranges.  Every failure, whether transport, credential or missing data,
// is logged and turned into an empty result; nothing is returned to the
// caller as an error.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	sheetsv4 "google.golang.org/api/sheets/v4"
)

// EmptyTable is what ReadTable returns when there is nothing to show.
const EmptyTable = "<pre></pre>"

const cellFormat = "|%-15s"

// Config names the spreadsheet and the A1 range each operation uses.
type Config struct {
	SpreadsheetID string
	TableRange    string
	AppendRange   string
	SeatsCell     string
	SeatNoRange   string
}

// Gateway translates business calls into spreadsheet reads and appends.
type Gateway struct {
	cfg        Config
	tableWidth int
	dial       Dialer
	logger     *slog.Logger

	mu     sync.Mutex
	values ValuesAPI
}

// NewGateway validates every configured range and returns a gateway that
// dials the spreadsheet service lazily.
func NewGateway(cfg Config, dial Dialer, logger *slog.Logger) (*Gateway, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	var table A1Range
	for _, rng := range []struct {
		name, value string
		dst         *A1Range
	}{
		{"table range", cfg.TableRange, &table},
		{"append range", cfg.AppendRange, nil},
		{"seats cell", cfg.SeatsCell, nil},
		{"seat number range", cfg.SeatNoRange, nil},
	} {
		parsed, err := ParseA1(rng.value)
		if err != nil {
			return nil, fmt.Errorf("sheets: %s: %w", rng.name, err)
		}
		if rng.dst != nil {
			*rng.dst = parsed
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:        cfg,
		tableWidth: table.Width(),
		dial:       dial,
		logger:     logger.With("component", "sheets", "spreadsheet", cfg.SpreadsheetID),
	}, nil
}

// ReadTable renders the table range as a pipe-delimited block wrapped in
// <pre> tags for the task UI.  Short rows are padded to the range width.
func (g *Gateway) ReadTable(ctx context.Context) string {
	rows, err := g.get(ctx, g.cfg.TableRange)
	if err != nil {
		g.logger.Error("error reading sheet", "range", g.cfg.TableRange, "error", err)
		return EmptyTable
	}
	if len(rows) == 0 {
		g.logger.Info("no data found", "range", g.cfg.TableRange)
		return EmptyTable
	}
	width := g.tableWidth
	if width == 0 {
		for _, row := range rows {
			width = max(width, len(row))
		}
	}

	var b strings.Builder
	b.WriteString("<pre>")
	for _, row := range rows {
		cells := make([]string, width)
		for i := range cells {
			if i < len(row) {
				cells[i] = cellString(row[i])
			}
			fmt.Fprintf(&b, cellFormat, cells[i])
		}
		b.WriteString(" | \r\n")
		g.logger.Info("table row", "cells", strings.Join(cells, "|"))
	}
	b.WriteString("</pre>")
	return b.String()
}

// AppendRow appends (first, last, email) after the last row of the table
// found at the append range.  Values are USER_ENTERED.  The triple is
// returned whether or not the write succeeded.
func (g *Gateway) AppendRow(ctx context.Context, firstName, lastName, email string) []string {
	row := []string{firstName, lastName, email}
	values, err := g.conn(ctx)
	if err == nil {
		vr := &sheetsv4.ValueRange{Values: [][]interface{}{{firstName, lastName, email}}}
		_, err = values.Append(ctx, g.cfg.SpreadsheetID, g.cfg.AppendRange, vr, ValueInputUserEntered)
	}
	if err != nil {
		g.logger.Error("error writing sheet", "range", g.cfg.AppendRange, "error", err)
		return row
	}
	g.logger.Info("data written in spreadsheet", "first_name", firstName, "last_name", lastName, "email", email)
	return row
}

// ReadSingleCell returns the seats cell as a string, "" when empty or on
// error.
func (g *Gateway) ReadSingleCell(ctx context.Context) string {
	rows, err := g.get(ctx, g.cfg.SeatsCell)
	if err != nil {
		g.logger.Error("error getting cell value", "range", g.cfg.SeatsCell, "error", err)
		return ""
	}
	cell := ""
	for _, row := range rows {
		if len(row) > 0 {
			cell = cellString(row[0])
		}
	}
	if cell == "" {
		g.logger.Info("no data found", "range", g.cfg.SeatsCell)
	}
	return cell
}

// ReadOccupiedRowCount returns how many rows of the seat number range hold
// at least one non-blank cell, as a decimal string; "" on error.
func (g *Gateway) ReadOccupiedRowCount(ctx context.Context) string {
	rows, err := g.get(ctx, g.cfg.SeatNoRange)
	if err != nil {
		g.logger.Error("error getting seat number", "range", g.cfg.SeatNoRange, "error", err)
		return ""
	}
	n := 0
	for _, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(cellString(v)) != "" {
				n++
				break
			}
		}
	}
	return strconv.Itoa(n)
}

func (g *Gateway) get(ctx context.Context, rng string) ([][]interface{}, error) {
	values, err := g.conn(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := values.Get(ctx, g.cfg.SpreadsheetID, rng)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Values, nil
}

// conn dials once and keeps the service; a failed dial is retried on the
// next call.
func (g *Gateway) conn(ctx context.Context) (ValuesAPI, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.values != nil {
		return g.values, nil
	}
	if g.dial == nil {
		return nil, fmt.Errorf("sheets: no dialer configured")
	}
	v, err := g.dial(ctx)
	if err != nil {
		return nil, err
	}
	g.values = v
	return v, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
