package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// ValueInputUserEntered makes the service parse appended values as if a
// user typed them, so numbers, dates and emails are detected.
const ValueInputUserEntered = "USER_ENTERED"

// ValuesAPI is the subset of the spreadsheets.values resource the gateway
// calls.  *sheetsv4.Service satisfies it through NewValuesAPI; tests use
// sheetstest.FakeValues.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, readRange string) (*sheetsv4.ValueRange, error)
	Append(ctx context.Context, spreadsheetID, appendRange string, vr *sheetsv4.ValueRange, valueInputOption string) (*sheetsv4.AppendValuesResponse, error)
}

// Dialer produces a ValuesAPI on first use.  It runs inside an activity, so
// a credential or transport failure surfaces as a logged empty result.
type Dialer func(ctx context.Context) (ValuesAPI, error)

// StaticDialer always returns v.
func StaticDialer(v ValuesAPI) Dialer {
	return func(context.Context) (ValuesAPI, error) { return v, nil }
}

// ServiceDialer builds a Sheets service with an HTTP client obtained from
// the credential provider.
func ServiceDialer(provider CredentialProvider, applicationName string) Dialer {
	return func(ctx context.Context) (ValuesAPI, error) {
		client, err := provider.Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("sheets credentials: %w", err)
		}
		svc, err := sheetsv4.NewService(ctx, option.WithHTTPClient(client), option.WithUserAgent(applicationName))
		if err != nil {
			return nil, fmt.Errorf("sheets service: %w", err)
		}
		return NewValuesAPI(svc), nil
	}
}

// NewValuesAPI adapts a Sheets service to ValuesAPI.
func NewValuesAPI(svc *sheetsv4.Service) ValuesAPI {
	return serviceValues{values: svc.Spreadsheets.Values}
}

type serviceValues struct {
	values *sheetsv4.SpreadsheetsValuesService
}

func (s serviceValues) Get(ctx context.Context, spreadsheetID, readRange string) (*sheetsv4.ValueRange, error) {
	return s.values.Get(spreadsheetID, readRange).Context(ctx).Do()
}

func (s serviceValues) Append(ctx context.Context, spreadsheetID, appendRange string, vr *sheetsv4.ValueRange, valueInputOption string) (*sheetsv4.AppendValuesResponse, error) {
	return s.values.Append(spreadsheetID, appendRange, vr).ValueInputOption(valueInputOption).Context(ctx).Do()
}
