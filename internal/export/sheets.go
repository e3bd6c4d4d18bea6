// Package export mirrors committed records into a Google Sheets journal.
// The sheet is append-only; the database stays the source of truth.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// SheetAppender writes one row per mirrored record to a spreadsheet.
type SheetAppender struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetAppender creates a Sheets client authenticated with service
// account credentials from the environment.
func NewSheetAppender(ctx context.Context, spreadsheetID, sheetName string) (*SheetAppender, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Entries"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetAppender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendEntry appends one journal row: store, id, date, description,
// amount, category, kind, owner and wallet.
func (a *SheetAppender) AppendEntry(ctx context.Context, store string, e core.Entry) error {
	if a.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		store,
		e.ID,
		e.Date.String(),
		e.Description,
		e.Amount.Float(),
		e.Category,
		string(e.Kind),
		e.CreatedBy,
		e.Wallet,
	}

	rng := fmt.Sprintf("%s!A:I", a.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", a.sheetName, err)
	}

	slog.InfoContext(ctx, "Entry mirrored to sheet",
		"sheet", a.sheetName, "store", store, "id", e.ID)
	return nil
}
