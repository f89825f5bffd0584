package sheets

import "context"

// Activities exposes the gateway to the workflow engine.  The method names
// are the registered activity names.  None of them ever returns an error:
// a failed spreadsheet call is indistinguishable from an empty sheet.
type Activities struct {
	Gateway *Gateway
}

// ReadSheet returns the table snapshot shown on the reservation form.
func (a *Activities) ReadSheet(ctx context.Context) (string, error) {
	return a.Gateway.ReadTable(ctx), nil
}

// WriteSheet appends a reservation row and echoes it back.
func (a *Activities) WriteSheet(ctx context.Context, firstName, lastName, email string) ([]string, error) {
	return a.Gateway.AppendRow(ctx, firstName, lastName, email), nil
}

// GetCellValue returns the seats-available cell.
func (a *Activities) GetCellValue(ctx context.Context) (string, error) {
	return a.Gateway.ReadSingleCell(ctx), nil
}

// GetSeatNo returns the occupied-row count used as the seat number.
func (a *Activities) GetSeatNo(ctx context.Context) (string, error) {
	return a.Gateway.ReadOccupiedRowCount(ctx), nil
}
