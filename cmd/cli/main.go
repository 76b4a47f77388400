package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/infrastructure/auth"
	"github.com/iho/cashbook/internal/infrastructure/logger"
	"github.com/iho/cashbook/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the cashbook HTTP API.
type apiClient struct {
	baseURL        string
	token          string
	branch         string
	idempotencyKey string
	http           *http.Client
}

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, e.Body.Error)
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	for _, f := range e.Body.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
	}
	return msg
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.branch != "" {
		req.Header.Set("X-Branch-ID", c.branch)
	}
	if c.idempotencyKey != "" && method == http.MethodPost {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, &apiErr.Body); err != nil {
			apiErr.Body.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(data, out)
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		timeout time.Duration
		output  string
	)
	c := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "cashbook-cli",
		Short:         "Cashbook CLI tool",
		Long:          `A command line interface for interacting with the cashbook API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.http = &http.Client{Timeout: timeout}
			if output != "table" && output != "json" {
				return fmt.Errorf("--output must be table or json")
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.baseURL, "url", envOr("CASHBOOK_URL", "http://localhost:8080"), "Base URL of the cashbook API")
	flags.StringVar(&c.token, "token", os.Getenv("CASHBOOK_TOKEN"), "Bearer token")
	flags.StringVar(&c.branch, "branch", os.Getenv("CASHBOOK_BRANCH"), "Branch sent as X-Branch-ID when auth is off")
	flags.StringVar(&c.idempotencyKey, "idempotency-key", "", "Idempotency-Key for mutating requests")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVarP(&output, "output", "o", "table", "Output format: table or json")

	p := &printer{out: out, format: &output}

	rootCmd.AddCommand(
		accountCmd(c, p),
		transactionCmd(c, p),
		transferCmd(c, p),
		invoiceCmd(c, p),
		paymentCmd(c, p),
		statementCmd(c, p),
		reconcileCmd(c, p),
		tokenCmd(out),
		migrateCmd(),
	)

	return rootCmd
}

func accountCmd(c *apiClient, p *printer) *cobra.Command {
	cmd := &cobra.Command{Use: "account", Short: "Account operations"}

	var owner dto.OwnerRequest
	create := &cobra.Command{
		Use:   "create KIND",
		Short: "Get or create the CASH or BANK account of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			req := dto.CreateAccountRequest{Kind: args[0], Owner: owner}
			if err := c.do(http.MethodPost, "/api/v1/accounts/", req, &resp); err != nil {
				return err
			}
			return p.accounts(&resp)
		},
	}
	create.Flags().StringVar(&owner.BranchID, "owner-branch", "", "Owning branch (defaults to the caller's)")
	create.Flags().StringVar(&owner.Institution, "institution", "", "Bank institution")
	create.Flags().StringVar(&owner.AccountNumber, "number", "", "Bank account number")
	create.Flags().StringVar(&owner.AccountType, "type", "", "Bank account type")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return p.accounts(&resp)
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			path := fmt.Sprintf("/api/v1/accounts/?limit=%d&offset=%d", limit, offset)
			if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}
			return p.accounts(resp.Accounts...)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	archive := &cobra.Command{
		Use:   "archive ID",
		Short: "Archive an account so it takes no further postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := c.do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/archive", nil, &resp); err != nil {
				return err
			}
			return p.accounts(&resp)
		},
	}

	cmd.AddCommand(create, get, list, archive)
	return cmd
}

func transactionCmd(c *apiClient, p *printer) *cobra.Command {
	cmd := &cobra.Command{Use: "txn", Short: "Ledger transactions"}

	var req dto.RecordTransactionRequest
	record := &cobra.Command{
		Use:   "record ACCOUNT_ID TYPE AMOUNT",
		Short: "Record an INGRESO or EGRESO",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type, req.Amount = args[1], args[2]
			var resp dto.TransactionResponse
			if err := c.do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/transactions", req, &resp); err != nil {
				return err
			}
			return p.transactions(&resp)
		},
	}
	record.Flags().StringVar(&req.Description, "description", "", "Description")
	record.Flags().StringVar(&req.Category, "category", "", "Category")

	var from, to string
	list := &cobra.Command{
		Use:   "list ACCOUNT_ID",
		Short: "List an account's transactions in date order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListTransactionsResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/transactions" + windowQuery(from, to)
			if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}
			return p.transactions(resp.Transactions...)
		},
	}
	list.Flags().StringVar(&from, "from", "", "Start date (inclusive)")
	list.Flags().StringVar(&to, "to", "", "End date (inclusive day)")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransactionResponse
			if err := c.do(http.MethodGet, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return p.transactions(&resp)
		},
	}

	cmd.AddCommand(record, list, get)
	return cmd
}

func transferCmd(c *apiClient, p *printer) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "transfer FROM_ID TO_ID AMOUNT",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateTransferRequest{
				FromAccountID: args[0],
				ToAccountID:   args[1],
				Amount:        args[2],
				Description:   description,
			}
			var resp dto.TransferResponse
			if err := c.do(http.MethodPost, "/api/v1/transfers/", req, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}
			fmt.Fprintf(p.out, "transfer %s: %s from %s to %s\n", resp.ID, resp.Amount, resp.FromAccountID, resp.ToAccountID)
			return p.transactions(resp.OutTxn, resp.InTxn)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func invoiceCmd(c *apiClient, p *printer) *cobra.Command {
	cmd := &cobra.Command{Use: "invoice", Short: "Invoice operations"}

	register := &cobra.Command{
		Use:   "register NUMBER COUNTERPARTY TOTAL",
		Short: "Register an invoice",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.RegisterInvoiceRequest{Number: args[0], Counterparty: args[1], Total: args[2]}
			var resp dto.InvoiceResponse
			if err := c.do(http.MethodPost, "/api/v1/invoices/", req, &resp); err != nil {
				return err
			}
			return p.invoices(&resp)
		},
	}

	var status, counterparty string
	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if counterparty != "" {
				q.Set("counterparty", counterparty)
			}
			var resp dto.ListInvoicesResponse
			if err := c.do(http.MethodGet, "/api/v1/invoices/?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}
			return p.invoices(resp.Invoices...)
		},
	}
	list.Flags().StringVar(&status, "status", "", "PENDIENTE, PARCIAL or PAGADO")
	list.Flags().StringVar(&counterparty, "counterparty", "", "Counterparty")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.InvoiceResponse
			if err := c.do(http.MethodGet, "/api/v1/invoices/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return p.invoices(&resp)
		},
	}

	cmd.AddCommand(register, list, get)
	return cmd
}

func paymentCmd(c *apiClient, p *printer) *cobra.Command {
	var (
		direction   string
		description string
		allocations []string
	)
	cmd := &cobra.Command{
		Use:   "pay ACCOUNT_ID AMOUNT --allocate INVOICE_ID=AMOUNT...",
		Short: "Register a payment settling one or more invoices",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			allocs, err := parseAllocations(allocations)
			if err != nil {
				return err
			}
			req := dto.RegisterPaymentRequest{
				AccountID:   args[0],
				Direction:   direction,
				Amount:      args[1],
				Description: description,
				Allocations: allocs,
			}
			var resp dto.PaymentResponse
			if err := c.do(http.MethodPost, "/api/v1/payments/", req, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}
			fmt.Fprintf(p.out, "payment %s: %s %s on %s\n", resp.ID, resp.Direction, resp.Amount, resp.AccountID)
			w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INVOICE\tAPPLIED\tREMAINING\tSTATUS")
			for _, a := range resp.Allocations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.InvoiceID, a.AmountApplied, a.BalanceRemaining, a.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "OUTFLOW", "OUTFLOW or INFLOW")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringArrayVar(&allocations, "allocate", nil, "INVOICE_ID=AMOUNT, repeatable")
	return cmd
}

func statementCmd(c *apiClient, p *printer) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "statement ACCOUNT_ID",
		Short: "Show an account statement with running balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.StatementResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/statement" + windowQuery(from, to)
			if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}

			fmt.Fprintf(p.out, "account %s (%s) balance %s\n", resp.AccountID, resp.AccountKind, resp.CurrentBalance)
			fmt.Fprintf(p.out, "opening %s  inflows %s  outflows %s  closing %s\n",
				resp.OpeningBalance, resp.PeriodInflows, resp.PeriodOutflows, resp.ClosingBalance)

			w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tNUMBER\tTYPE\tAMOUNT\tBEFORE\tAFTER\tDESCRIPTION")
			for _, l := range resp.Lines {
				t := l.Transaction
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.OccurredAt.Format(time.DateOnly), t.TransactionNumber, t.Type, t.Amount,
					l.BalanceBefore, l.BalanceAfter, truncate(t.Description, 40))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "End date (inclusive day)")
	return cmd
}

func reconcileCmd(c *apiClient, p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [ACCOUNT_ID]",
		Short: "Check stored balances against their transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var resp dto.ReconciliationResponse
				if err := c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconciliation", nil, &resp); err != nil {
					return err
				}
				if p.json() {
					return p.printJSON(resp)
				}
				return p.reconciliations(&resp)
			}

			var resp dto.ReconciliationReportResponse
			if err := c.do(http.MethodGet, "/api/v1/reconciliation", nil, &resp); err != nil {
				return err
			}
			if p.json() {
				return p.printJSON(resp)
			}

			if resp.Balanced {
				fmt.Fprintf(p.out, "Reconciliation PASSED: %d accounts balanced\n", resp.TotalAccounts)
				return nil
			}
			fmt.Fprintf(p.out, "Reconciliation FAILED: %d of %d accounts unbalanced\n", len(resp.Unbalanced), resp.TotalAccounts)
			if err := p.reconciliations(resp.Unbalanced...); err != nil {
				return err
			}
			return fmt.Errorf("ledger is unbalanced")
		},
	}
}

func tokenCmd(out io.Writer) *cobra.Command {
	var (
		secret   string
		branch   string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token OPERATOR",
		Short: "Issue a bearer token for an operator of a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, duration).Generate(args[0], branch)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch claim")
	cmd.Flags().DurationVar(&duration, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, path, l)
			}
			return postgres.RunMigrations(databaseURL, path, l)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL")
	cmd.Flags().StringVar(&path, "path", os.Getenv("MIGRATIONS_PATH"), "Migrations directory (embedded copy when empty)")
	return cmd
}

func parseAllocations(raw []string) ([]dto.AllocationRequest, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --allocate INVOICE_ID=AMOUNT is required")
	}

	allocs := make([]dto.AllocationRequest, 0, len(raw))
	for _, r := range raw {
		id, amount, ok := strings.Cut(r, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid allocation %q, want INVOICE_ID=AMOUNT", r)
		}
		if _, err := decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid allocation amount %q", amount)
		}
		allocs = append(allocs, dto.AllocationRequest{InvoiceID: id, AmountApplied: amount})
	}

	return allocs, nil
}

func windowQuery(from, to string) string {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// printer renders responses as tables or indented JSON.
type printer struct {
	out    io.Writer
	format *string
}

func (p *printer) json() bool { return *p.format == "json" }

func (p *printer) printJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) accounts(accounts ...*dto.AccountResponse) error {
	if p.json() {
		return p.printJSON(single(accounts))
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tOWNER\tBALANCE\tARCHIVED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", a.ID, a.Kind, a.OwnerRef, a.Balance, a.Archived)
	}
	return w.Flush()
}

func (p *printer) transactions(txns ...*dto.TransactionResponse) error {
	if p.json() {
		return p.printJSON(single(txns))
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tDATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, t := range txns {
		if t == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.TransactionNumber, t.OccurredAt.Format(time.DateOnly), t.Type, t.Amount, t.BalanceAfter, truncate(t.Description, 40))
	}
	return w.Flush()
}

func (p *printer) invoices(invoices ...*dto.InvoiceResponse) error {
	if p.json() {
		return p.printJSON(single(invoices))
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tCOUNTERPARTY\tTOTAL\tPAID\tSTATUS")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Number, truncate(inv.Counterparty, 30), inv.Total, inv.AmountPaid, inv.Status)
	}
	return w.Flush()
}

func (p *printer) reconciliations(recs ...*dto.ReconciliationResponse) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tSTORED\tCOMPUTED\tDIFFERENCE\tTXNS\tBALANCED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n",
			r.AccountID, r.StoredBalance, r.ComputedBalance, r.Difference, r.TransactionCount, r.Balanced)
	}
	return w.Flush()
}

// single unwraps one-element lists so single lookups print as an object.
func single[T any](items []T) any {
	if len(items) == 1 {
		return items[0]
	}
	return items
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
