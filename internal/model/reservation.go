package model

// ReservationRequest carries the answers of a completed reservation form.
// It is transient: built from the form task and discarded after the row is
// appended to the spreadsheet.
type ReservationRequest struct {
    ProcessID string
    FirstName string
    LastName  string
    Email     string
}

// Row returns the spreadsheet row for the request, in column order.
func (r ReservationRequest) Row() []string {
    return []string{r.FirstName, r.LastName, r.Email}
}
