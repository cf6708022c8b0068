package relay

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsRelay appends each submission as a row of a Google Sheet.
// Attachments are not uploaded; the row records the file name only.
type SheetsRelay struct {
	service     *sheets.Service
	spreadsheet string
	sheetName   string
}

// NewSheetsRelay authenticates with a service-account credentials file.
func NewSheetsRelay(ctx context.Context, credentialsPath, spreadsheetID, sheetName string) (*SheetsRelay, error) {
	credBytes, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(credBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetsRelay{service: service, spreadsheet: spreadsheetID, sheetName: sheetName}, nil
}

// Submit appends one row holding the message values in field order.
func (r *SheetsRelay) Submit(ctx context.Context, msg Message) error {
	_, err := r.service.Spreadsheets.Values.Append(
		r.spreadsheet,
		r.sheetName,
		&sheets.ValueRange{Values: [][]interface{}{Row(msg)}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}

// Row flattens msg into spreadsheet cell values.
func Row(msg Message) []interface{} {
	row := make([]interface{}, 0, len(msg.Fields)+1)
	for _, f := range msg.Fields {
		row = append(row, stringify(f.Value))
	}
	if msg.Attachment != nil {
		row = append(row, msg.Attachment.Filename)
	}
	return row
}
