package sheets_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/sheets"
	"github.com/iliyamo/bus-seat-reservation/internal/sheets/sheetstest"
)

var testConfig = sheets.Config{
	SpreadsheetID: "sheet-id",
	TableRange:    "BUS!A1:D2",
	AppendRange:   "BUS!A5:C5",
	SeatsCell:     "BUS!D2",
	SeatNoRange:   "BUS!B5:B116",
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newGateway(t *testing.T, fake *sheetstest.FakeValues) *sheets.Gateway {
	t.Helper()
	gw, err := sheets.NewGateway(testConfig, sheets.StaticDialer(fake), quietLogger())
	require.NoError(t, err)
	return gw
}

func seedInventory(fake *sheetstest.FakeValues, seats string) {
	fake.SetRow("BUS!A1", "Bus", "Schedule", "Destination", "Seats")
	fake.SetRow("BUS!A2", "B-12", "08:30", "Valencia", seats)
}

func TestNewGatewayRejectsBadRanges(t *testing.T) {
	cfg := testConfig
	cfg.SeatsCell = "BUS!"
	_, err := sheets.NewGateway(cfg, nil, nil)
	assert.Error(t, err)

	cfg = testConfig
	cfg.SpreadsheetID = ""
	_, err = sheets.NewGateway(cfg, nil, nil)
	assert.Error(t, err)
}

func TestReadTableFormatsRows(t *testing.T) {
	fake := sheetstest.New()
	seedInventory(fake, "5")
	gw := newGateway(t, fake)

	want := "<pre>" +
		"|Bus            |Schedule       |Destination    |Seats           | \r\n" +
		"|B-12           |08:30          |Valencia       |5               | \r\n" +
		"</pre>"
	assert.Equal(t, want, gw.ReadTable(context.Background()))
}

func TestReadTablePadsShortRows(t *testing.T) {
	fake := sheetstest.New()
	fake.SetRow("BUS!A1", "Bus", "Schedule")
	gw := newGateway(t, fake)

	got := gw.ReadTable(context.Background())
	assert.Equal(t, "<pre>|Bus            |Schedule       |               |                | \r\n</pre>", got)
}

func TestReadTableEmptyAndFailure(t *testing.T) {
	fake := sheetstest.New()
	gw := newGateway(t, fake)
	assert.Equal(t, sheets.EmptyTable, gw.ReadTable(context.Background()))

	fake.GetErr = errors.New("tls handshake timeout")
	assert.Equal(t, sheets.EmptyTable, gw.ReadTable(context.Background()))
}

func TestReadSingleCell(t *testing.T) {
	fake := sheetstest.New()
	gw := newGateway(t, fake)
	ctx := context.Background()

	assert.Equal(t, "", gw.ReadSingleCell(ctx), "empty cell")

	fake.Set("BUS!D2", "0")
	assert.Equal(t, "0", gw.ReadSingleCell(ctx))

	fake.GetErr = errors.New("connection reset")
	assert.Equal(t, "", gw.ReadSingleCell(ctx), "errors read as an empty cell")
}

func TestAppendThenCountIncreasesByOne(t *testing.T) {
	fake := sheetstest.New()
	seedInventory(fake, "5")
	fake.SetRow("BUS!A5", "Luis", "Garcia", "luis@example.com")
	gw := newGateway(t, fake)
	ctx := context.Background()

	before := gw.ReadOccupiedRowCount(ctx)
	require.Equal(t, "1", before)

	row := gw.AppendRow(ctx, "Ana", "Lopez", "ana@example.com")
	assert.Equal(t, []string{"Ana", "Lopez", "ana@example.com"}, row)
	assert.Equal(t, "2", gw.ReadOccupiedRowCount(ctx))

	assert.Equal(t, "Ana", fake.Cell("BUS!A6"))
	assert.Equal(t, "ana@example.com", fake.Cell("BUS!C6"))
	assert.Equal(t, []string{sheets.ValueInputUserEntered}, fake.InputOptions())
}

func TestOccupiedRowCountSkipsBlankRows(t *testing.T) {
	fake := sheetstest.New()
	fake.Set("BUS!B5", "Lopez")
	fake.Set("BUS!B7", "Garcia")
	fake.Set("BUS!B8", "   ")
	gw := newGateway(t, fake)

	assert.Equal(t, "2", gw.ReadOccupiedRowCount(context.Background()))
}

func TestOccupiedRowCountEmptyAndFailure(t *testing.T) {
	fake := sheetstest.New()
	gw := newGateway(t, fake)
	ctx := context.Background()
	assert.Equal(t, "0", gw.ReadOccupiedRowCount(ctx))

	fake.GetErr = errors.New("quota exceeded")
	assert.Equal(t, "", gw.ReadOccupiedRowCount(ctx))
}

func TestAppendFailureIsSwallowed(t *testing.T) {
	fake := sheetstest.New()
	fake.AppendErr = errors.New("permission denied")
	gw := newGateway(t, fake)

	row := gw.AppendRow(context.Background(), "Ana", "Lopez", "ana@example.com")
	assert.Equal(t, []string{"Ana", "Lopez", "ana@example.com"}, row)
	assert.Empty(t, fake.Appended())
}

func TestDialFailureReadsAsNoData(t *testing.T) {
	calls := 0
	dial := func(context.Context) (sheets.ValuesAPI, error) {
		calls++
		return nil, errors.New("token expired")
	}
	gw, err := sheets.NewGateway(testConfig, dial, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "", gw.ReadSingleCell(ctx))
	assert.Equal(t, "", gw.ReadOccupiedRowCount(ctx))
	assert.Equal(t, sheets.EmptyTable, gw.ReadTable(ctx))
	assert.Equal(t, 3, calls, "a failed dial is retried on every call")
}

func TestActivitiesNeverFail(t *testing.T) {
	fake := sheetstest.New()
	fake.GetErr = errors.New("boom")
	fake.AppendErr = errors.New("boom")
	acts := &sheets.Activities{Gateway: newGateway(t, fake)}
	ctx := context.Background()

	table, err := acts.ReadSheet(ctx)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(table, "<pre>"))

	_, err = acts.WriteSheet(ctx, "a", "b", "c")
	assert.NoError(t, err)

	cell, err := acts.GetCellValue(ctx)
	assert.NoError(t, err)
	assert.Empty(t, cell)

	seat, err := acts.GetSeatNo(ctx)
	assert.NoError(t, err)
	assert.Empty(t, seat)
}
