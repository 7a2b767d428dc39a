// Package google reads and writes the ledger through a Google Sheets
// spreadsheet, for households that keep their books in Sheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	accountsSheet     string
	budgetsSheet      string
}

// Ensure interface conformance
var (
	_ ledger.Source   = (*Client)(nil)
	_ ledger.Appender = (*Client)(nil)
)

// NewFromEnv creates a Sheets-backed ledger using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional sheet names: GOOGLE_TRANSACTIONS_SHEET (default "Transactions"),
// GOOGLE_ACCOUNTS_SHEET (default "Accounts"),
// GOOGLE_BUDGETS_SHEET (default "Budgets").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	sheetName := func(env, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
		return fallback
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: sheetName("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),
		accountsSheet:     sheetName("GOOGLE_ACCOUNTS_SHEET", "Accounts"),
		budgetsSheet:      sheetName("GOOGLE_BUDGETS_SHEET", "Budgets"),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
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

func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRange(ctx, c.transactionsSheet, "A:H")
	if err != nil {
		return nil, err
	}
	txs, skipped := parseTransactionRows(rows)
	if skipped > 0 {
		slog.WarnContext(ctx, "skipped unparseable transaction rows",
			"sheet", c.transactionsSheet, "skipped", skipped)
	}
	return txs, nil
}

func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	rows, err := c.readRange(ctx, c.accountsSheet, "A:E")
	if err != nil {
		return nil, err
	}
	return parseAccountRows(rows), nil
}

func (c *Client) Budgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := c.readRange(ctx, c.budgetsSheet, "A:D")
	if err != nil {
		return nil, err
	}
	return parseBudgetRows(rows), nil
}

// Append writes transactions as new rows at the bottom of the sheet.
func (c *Client) Append(ctx context.Context, txs []core.Transaction) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(txs))
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
		values = append(values, []any{
			t.ID,
			t.AccountID,
			t.Date.ISO(),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.IsVerified,
			t.ImportBatchID,
		})
	}

	rng := fmt.Sprintf("%s!A:H", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", c.transactionsSheet, err)
	}
	return len(values), nil
}

func (c *Client) readRange(ctx context.Context, sheetName, cols string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
