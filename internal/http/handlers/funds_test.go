package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

type fakeSQL struct {
	execFn     func(query string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(query string, args ...any) pgx.Row
	queryFn    func(query string, args ...any) (pgx.Rows, error)
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if f.execFn == nil {
		return pgconn.CommandTag{}, nil
	}
	return f.execFn(query, args...)
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if f.queryRowFn == nil {
		return SimpleRow{}
	}
	return f.queryRowFn(query, args...)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if f.queryFn == nil {
		return nil, pgx.ErrNoRows
	}
	return f.queryFn(query, args...)
}

func postFund(t *testing.T, app *App, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/funds", bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	app.FundsCreate(rr, req)
	return rr
}

func validFundBody() map[string]any {
	return map[string]any{
		"userEmail":       "donor@example.com",
		"userName":        "Jordan Donor",
		"amount":          2500,
		"currency":        "usd",
		"paymentIntentId": "pi_1",
		"status":          "succeeded",
		"metadata":        map[string]any{"campaign": "emergency-o-neg"},
	}
}

func TestFundsCreateRecordsDonation(t *testing.T) {
	var gotArgs []any
	app := &App{
		Logger: zerolog.Nop(),
		SQL: &fakeSQL{
			queryRowFn: func(query string, args ...any) pgx.Row {
				gotArgs = args
				return NewSimpleRow(func(dest ...any) error {
					*(dest[0].(*string)) = "fund-1"
					*(dest[1].(*time.Time)) = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
					return nil
				})
			},
		},
	}

	rr := postFund(t, app, validFundBody())
	if rr.Code != 201 {
		t.Fatalf("unexpected status: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}

	var payload struct {
		Success bool    `json:"success"`
		Data    fundDTO `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success {
		t.Fatalf("expected success=true")
	}
	if payload.Data.ID != "fund-1" || payload.Data.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected data: %+v", payload.Data)
	}
	if len(gotArgs) != 7 {
		t.Fatalf("unexpected insert args count: %d", len(gotArgs))
	}
	if gotArgs[4] != "pi_1" {
		t.Fatalf("payment intent arg mismatch: %#v", gotArgs[4])
	}
}

func TestFundsCreateDuplicateIntentIsConflict(t *testing.T) {
	app := &App{
		Logger: zerolog.Nop(),
		SQL: &fakeSQL{
			queryRowFn: func(query string, args ...any) pgx.Row {
				return NewSimpleRow(func(dest ...any) error {
					return &pgconn.PgError{Code: "23505", ConstraintName: "funds_payment_intent_id_key"}
				})
			},
		},
	}

	body := validFundBody()
	body["paymentIntentId"] = "pi_2"
	rr := postFund(t, app, body)
	if rr.Code != 409 {
		t.Fatalf("unexpected status: got %d, want 409", rr.Code)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message == "" {
		t.Fatalf("conflict response missing message")
	}
}

func TestFundsCreateRejectsNonSucceededStatus(t *testing.T) {
	sqlCalled := false
	app := &App{
		Logger: zerolog.Nop(),
		SQL: &fakeSQL{
			queryRowFn: func(query string, args ...any) pgx.Row {
				sqlCalled = true
				return SimpleRow{}
			},
		},
	}

	body := validFundBody()
	body["status"] = "processing"
	rr := postFund(t, app, body)
	if rr.Code != 400 {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
	if sqlCalled {
		t.Fatalf("ledger insert must not run for non-succeeded payments")
	}
}

func TestFundsCreateRejectsAmountBelowMinimum(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), SQL: &fakeSQL{}}

	body := validFundBody()
	body["amount"] = 50
	rr := postFund(t, app, body)
	if rr.Code != 400 {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestFundsCreateDefaultsAnonymousDonor(t *testing.T) {
	var gotName any
	app := &App{
		Logger: zerolog.Nop(),
		SQL: &fakeSQL{
			queryRowFn: func(query string, args ...any) pgx.Row {
				gotName = args[1]
				return NewSimpleRow(func(dest ...any) error {
					*(dest[0].(*string)) = "fund-2"
					*(dest[1].(*time.Time)) = time.Now()
					return nil
				})
			},
		},
	}

	body := validFundBody()
	body["userName"] = ""
	rr := postFund(t, app, body)
	if rr.Code != 201 {
		t.Fatalf("unexpected status: got %d, want 201", rr.Code)
	}
	if gotName != domain.AnonymousDonorName {
		t.Fatalf("donor name mismatch: got %#v, want %q", gotName, domain.AnonymousDonorName)
	}
}

func TestFundsCreateRejectsAmountMismatch(t *testing.T) {
	app := &App{
		Logger: zerolog.Nop(),
		SQL:    &fakeSQL{},
		Processor: &fakeProcessor{
			ready: true,
			getIntent: func(id string) (*domain.PaymentIntent, string, error) {
				return &domain.PaymentIntent{ID: id, AmountMinor: 5000, Currency: "usd"}, "succeeded", nil
			},
		},
	}

	rr := postFund(t, app, validFundBody())
	if rr.Code != 400 {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

type fundsRows struct {
	TestRowsBase
	rows [][]any
	idx  int
}

func (f *fundsRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fundsRows) Scan(dest ...any) error {
	row := f.rows[f.idx-1]
	*(dest[0].(*string)) = row[0].(string)
	*(dest[1].(*string)) = row[1].(string)
	*(dest[2].(*string)) = row[2].(string)
	*(dest[3].(*int64)) = row[3].(int64)
	*(dest[4].(*string)) = row[4].(string)
	*(dest[5].(*string)) = row[5].(string)
	*(dest[6].(*string)) = row[6].(string)
	*(dest[7].(*[]byte)) = row[7].([]byte)
	*(dest[8].(*time.Time)) = row[8].(time.Time)
	return nil
}

func (f *fundsRows) Err() error { return nil }

func (f *fundsRows) Close() {}

func TestFundsListReturnsItemsAndTotal(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	app := &App{
		Logger: zerolog.Nop(),
		SQL: &fakeSQL{
			queryFn: func(query string, args ...any) (pgx.Rows, error) {
				return &fundsRows{rows: [][]any{
					{"fund-1", "donor@example.com", "Jordan Donor", int64(2500), "usd", "pi_1", "succeeded", []byte(`{}`), created},
				}}, nil
			},
			queryRowFn: func(query string, args ...any) pgx.Row {
				return NewSimpleRow(func(dest ...any) error {
					*(dest[0].(*int64)) = 1
					*(dest[1].(*int64)) = 2500
					return nil
				})
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/funds", nil)
	rr := httptest.NewRecorder()
	app.FundsList(rr, req)
	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200", rr.Code)
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Items       []fundDTO `json:"items"`
			Count       int64     `json:"count"`
			TotalAmount int64     `json:"totalAmount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 1 || payload.Data.TotalAmount != 2500 {
		t.Fatalf("unexpected payload: %+v", payload.Data)
	}
}
