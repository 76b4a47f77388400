package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeAccountCreated      = "account.created"
	EventTypeAccountArchived     = "account.archived"
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypePaymentRegistered   = "payment.registered"
	EventTypeInvoiceRegistered   = "invoice.registered"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
	AggregateTypeTransfer    = "transfer"
	AggregateTypePayment     = "payment"
	AggregateTypeInvoice     = "invoice"
)

// OutboxEvent is written in the same unit of work as the change it
// describes and relayed later by the publisher.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Kind      string `json:"kind"`
	OwnerRef  string `json:"owner_ref"`
}

// TransactionRecordedEvent payload
type TransactionRecordedEvent struct {
	TransactionID     string `json:"transaction_id"`
	AccountID         string `json:"account_id"`
	Type              string `json:"type"`
	Amount            string `json:"amount"`
	BalanceAfter      string `json:"balance_after"`
	TransactionNumber string `json:"transaction_number"`
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

// PaymentRegisteredEvent payload
type PaymentRegisteredEvent struct {
	PaymentID   string             `json:"payment_id"`
	AccountID   string             `json:"account_id"`
	Direction   string             `json:"direction"`
	Amount      string             `json:"amount"`
	Allocations []AllocationRecord `json:"allocations"`
}

// AllocationRecord is one allocation inside PaymentRegisteredEvent.
type AllocationRecord struct {
	InvoiceID        string `json:"invoice_id"`
	AmountApplied    string `json:"amount_applied"`
	BalanceRemaining string `json:"balance_remaining"`
	Status           string `json:"status"`
}

// NewOutboxEvent builds an unpublished event.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// EventPayload flattens a typed event payload into the map stored in the outbox.
func EventPayload(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	payload := map[string]any{}
	_ = json.Unmarshal(raw, &payload)

	return payload
}
