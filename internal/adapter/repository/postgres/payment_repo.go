package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

const paymentColumns = `id, source_account_id, destination_account_id, amount, currency,
	status, reservation_id, transaction_id, idempotency_key, description,
	failure_reason, created_at, updated_at`

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	_, err := queryEngine(r.pool, tx).Exec(ctx, `
		INSERT INTO payments
			(id, source_account_id, destination_account_id, amount, currency, status,
			 idempotency_key, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		payment.ID,
		payment.SourceAccountID,
		payment.DestinationAccountID,
		decimalToNumeric(payment.Amount),
		payment.Currency,
		string(payment.Status),
		payment.IdempotencyKey,
		payment.Description,
		timeToPgTimestamptz(payment.CreatedAt),
		timeToPgTimestamptz(payment.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateIdempotency
	}

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

// GetByIDForUpdate retrieves a payment by ID with a FOR UPDATE lock,
// serializing saga state transitions on one payment.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	row := queryEngine(r.pool, tx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
	return scanPayment(row)
}

// Update persists the mutable payment fields.
func (r *PaymentRepository) Update(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	tag, err := queryEngine(r.pool, tx).Exec(ctx, `
		UPDATE payments
		SET status = $2, reservation_id = $3, transaction_id = $4,
			failure_reason = $5, updated_at = $6
		WHERE id = $1`,
		payment.ID,
		string(payment.Status),
		ptrToText(payment.ReservationID),
		ptrToText(payment.TransactionID),
		ptrToText(payment.FailureReason),
		timeToPgTimestamptz(payment.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// ListByStatus retrieves payments in a given status, oldest first so
// operators see the longest-stuck anomalies at the top.
func (r *PaymentRepository) ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = $1
		ORDER BY updated_at, id
		LIMIT $2 OFFSET $3`,
		string(status), int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment       domain.Payment
		amount        pgtype.Numeric
		status        string
		reservationID pgtype.Text
		transactionID pgtype.Text
		failureReason pgtype.Text
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&payment.ID,
		&payment.SourceAccountID,
		&payment.DestinationAccountID,
		&amount,
		&payment.Currency,
		&status,
		&reservationID,
		&transactionID,
		&payment.IdempotencyKey,
		&payment.Description,
		&failureReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	payment.Amount = numericToDecimal(amount)
	payment.Status = domain.PaymentStatus(status)
	payment.ReservationID = textToPtr(reservationID)
	payment.TransactionID = textToPtr(transactionID)
	payment.FailureReason = textToPtr(failureReason)
	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return &payment, nil
}
