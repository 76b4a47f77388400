package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	getFn    func(ctx context.Context, id string) (*domain.Transfer, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.getFn(ctx, id)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateTransferInput

	handler := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			captured = input
			return &domain.Transfer{
				ID:            "tr-1",
				FromAccountID: input.FromAccountID,
				ToAccountID:   input.ToAccountID,
				Amount:        input.Amount,
			}, nil
		},
	})

	body := `{"from_account_id":"caja","to_account_id":"banco","amount":"200.50","description":"deposit"}`
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.FromAccountID != "caja" || captured.ToAccountID != "banco" || !captured.Amount.Equal(decimal.RequireFromString("200.50")) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "tr-1" {
		t.Fatalf("expected transfer tr-1, got %s", resp.ID)
	}
}

func TestTransferHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "zero amount never reaches the use case",
			body:       `{"from_account_id":"a","to_account_id":"b","amount":"0"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidAmount",
		},
		{
			name:       "same account",
			body:       `{"from_account_id":"a","to_account_id":"a","amount":"5"}`,
			err:        domain.ErrSameAccount,
			wantStatus: http.StatusBadRequest,
			wantKind:   "SameAccount",
		},
		{
			name:       "missing account",
			body:       `{"from_account_id":"a","to_account_id":"b","amount":"5"}`,
			err:        domain.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
			wantKind:   "AccountNotFound",
		},
		{
			name:       "storage failure",
			body:       `{"from_account_id":"a","to_account_id":"b","amount":"5"}`,
			err:        domain.ErrOperationFailed,
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "OperationFailed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
					if tt.err == nil {
						t.Fatalf("use case should not be called")
					}
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error != tt.wantKind {
				t.Fatalf("expected %s, got %+v", tt.wantKind, resp)
			}
		})
	}
}

func TestTransferHandler_Get(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transfer, error) {
			return &domain.Transfer{
				ID:     id,
				OutTxn: &domain.Transaction{ID: "t-out", Type: domain.TransactionTypeEgreso},
				InTxn:  &domain.Transaction{ID: "t-in", Type: domain.TransactionTypeIngreso},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transfers/tr-1", nil)
	req = setChiURLParam(req, "id", "tr-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OutTxn == nil || resp.OutTxn.ID != "t-out" || resp.InTxn == nil || resp.InTxn.ID != "t-in" {
		t.Fatalf("expected both legs, got %+v", resp)
	}
}
