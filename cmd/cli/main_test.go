package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/cashbook/internal/infrastructure/auth"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

func newAPI(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.RequestURI(), Header: r.Header.Clone()}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		seen = append(seen, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestAccountCreate_SendsOwnerAndHeaders(t *testing.T) {
	srv, seen := newAPI(t, http.StatusCreated, `{"id":"acc-1","kind":"BANK","owner_ref":"b1:BANK:Banco Uno:0012","balance":"0","archived":false}`)

	out, err := execute(t, "--url", srv.URL, "--branch", "b1", "--idempotency-key", "k1",
		"account", "create", "BANK", "--institution", "Banco Uno", "--number", "0012")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	req := (*seen)[0]
	if req.Method != http.MethodPost || req.Path != "/api/v1/accounts/" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if req.Header.Get("X-Branch-ID") != "b1" || req.Header.Get("Idempotency-Key") != "k1" {
		t.Fatalf("missing headers: %v", req.Header)
	}
	owner := req.Body["owner"].(map[string]any)
	if req.Body["kind"] != "BANK" || owner["institution"] != "Banco Uno" || owner["account_number"] != "0012" {
		t.Fatalf("unexpected body %v", req.Body)
	}
	if !strings.Contains(out, "acc-1") || !strings.Contains(out, "b1:BANK:Banco Uno:0012") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPay_ParsesAllocations(t *testing.T) {
	srv, seen := newAPI(t, http.StatusCreated, `{"id":"pay-1","account_id":"acc-1","direction":"OUTFLOW","amount":"100",
		"allocations":[{"invoice_id":"inv-1","amount_applied":"60","balance_remaining":"0","status":"PAGADO"},
		{"invoice_id":"inv-2","amount_applied":"40","balance_remaining":"10","status":"PARCIAL"}]}`)

	out, err := execute(t, "--url", srv.URL, "pay", "acc-1", "100", "--allocate", "inv-1=60", "--allocate", "inv-2=40")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	allocs := (*seen)[0].Body["allocations"].([]any)
	if len(allocs) != 2 || allocs[1].(map[string]any)["amount_applied"] != "40" {
		t.Fatalf("unexpected allocations %v", allocs)
	}
	if !strings.Contains(out, "PARCIAL") || !strings.Contains(out, "PAGADO") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestParseAllocations(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		wantErr bool
	}{
		{name: "valid", raw: []string{"inv-1=10.50"}},
		{name: "none", raw: nil, wantErr: true},
		{name: "missing separator", raw: []string{"inv-1"}, wantErr: true},
		{name: "bad amount", raw: []string{"inv-1=ten"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAllocations(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAllocations(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestReconcile_FailsWhenUnbalanced(t *testing.T) {
	srv, _ := newAPI(t, http.StatusOK, `{"total_accounts":3,"balanced":false,"unbalanced":[
		{"account_id":"acc-2","stored_balance":"10","computed_balance":"7","difference":"3","transaction_count":2,"balanced":false}]}`)

	out, err := execute(t, "--url", srv.URL, "reconcile")
	if err == nil {
		t.Fatal("expected error for unbalanced ledger")
	}
	if !strings.Contains(out, "1 of 3 accounts unbalanced") || !strings.Contains(out, "acc-2") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStatement_WindowQuery(t *testing.T) {
	srv, seen := newAPI(t, http.StatusOK, `{"account_id":"acc-1","account_kind":"CASH","current_balance":"5","lines":[]}`)

	if _, err := execute(t, "--url", srv.URL, "-o", "json", "statement", "acc-1", "--from", "2026-01-01", "--to", "2026-01-31"); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if got := (*seen)[0].Path; got != "/api/v1/accounts/acc-1/statement?from=2026-01-01&to=2026-01-31" {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestAPIError_Surfaced(t *testing.T) {
	srv, _ := newAPI(t, http.StatusConflict, `{"error":"OverAllocation","message":"allocation exceeds invoice balance","invoice_id":"inv-1"}`)

	_, err := execute(t, "--url", srv.URL, "transfer", "a", "b", "5")

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Body.Error != "OverAllocation" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "token", "ana", "--secret", "s3cret", "--branch", "b1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.BranchID != "b1" || claims.Subject != "ana" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}
