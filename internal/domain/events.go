package domain

import "time"

// EventSchemaVersion is stamped on every outbox event payload so
// downstream consumers can evolve independently.
const EventSchemaVersion = 1

// Event types
const (
	EventTypePaymentInitiated              = "payment.initiated"
	EventTypePaymentProcessing             = "payment.processing"
	EventTypePaymentCompleted              = "payment.completed"
	EventTypePaymentFailed                 = "payment.failed"
	EventTypePaymentCancelled              = "payment.cancelled"
	EventTypePaymentReconciliationRequired = "payment.reconciliation_required"

	EventTypeTransactionCreated   = "transaction.created"
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"

	EventTypeReservationCreated   = "reservation.created"
	EventTypeReservationCommitted = "reservation.committed"
	EventTypeReservationReleased  = "reservation.released"
	EventTypeReservationExpired   = "reservation.expired"
)

// Aggregate types. The aggregate id doubles as the partition key, so
// events for one payment or transaction are always delivered in order.
const (
	AggregateTypePayment     = "payment"
	AggregateTypeTransaction = "transaction"
	AggregateTypeReservation = "reservation"
)

// OutboxEvent represents an event to be published. It is written in
// the same database transaction as the state change it describes.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	SchemaVersion int
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// PaymentEventPayload snapshots a payment at the moment of a
// lifecycle transition.
func PaymentEventPayload(p *Payment) map[string]any {
	payload := map[string]any{
		"payment_id":             p.ID,
		"source_account_id":      p.SourceAccountID,
		"destination_account_id": p.DestinationAccountID,
		"amount":                 p.Amount.String(),
		"currency":               p.Currency,
		"status":                 string(p.Status),
	}
	if p.ReservationID != nil {
		payload["reservation_id"] = *p.ReservationID
	}
	if p.TransactionID != nil {
		payload["transaction_id"] = *p.TransactionID
	}
	if p.FailureReason != nil {
		payload["failure_reason"] = *p.FailureReason
	}
	return payload
}

// TransactionEventPayload snapshots a ledger transaction.
func TransactionEventPayload(t *Transaction) map[string]any {
	payload := map[string]any{
		"transaction_id":         t.ID,
		"reference_number":       t.ReferenceNumber,
		"source_account_id":      t.SourceAccountID,
		"destination_account_id": t.DestinationAccountID,
		"amount":                 t.Amount.String(),
		"currency":               t.Currency,
		"type":                   string(t.Type),
		"status":                 string(t.Status),
	}
	if t.PaymentID != nil {
		payload["payment_id"] = *t.PaymentID
	}
	if t.ReservationID != nil {
		payload["reservation_id"] = *t.ReservationID
	}
	if t.FailureReason != nil {
		payload["failure_reason"] = *t.FailureReason
	}
	return payload
}

// ReservationEventPayload snapshots a balance reservation.
func ReservationEventPayload(r *Reservation) map[string]any {
	payload := map[string]any{
		"reservation_id": r.ID,
		"account_id":     r.AccountID,
		"amount":         r.Amount.String(),
		"currency":       r.Currency,
		"status":         string(r.Status),
		"expires_at":     r.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	if r.TransactionID != nil {
		payload["transaction_id"] = *r.TransactionID
	}
	if r.ReleaseReason != nil {
		payload["release_reason"] = *r.ReleaseReason
	}
	return payload
}
