package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

const transactionColumns = `id, reference_number, source_account_id, destination_account_id,
	amount, currency, type, status, payment_id, reservation_id, idempotency_key,
	description, failure_reason, created_at, completed_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new ledger transaction. The unique index on
// idempotency_key turns a concurrent duplicate into
// domain.ErrDuplicateIdempotency.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	_, err := queryEngine(r.pool, tx).Exec(ctx, `
		INSERT INTO transactions
			(id, reference_number, source_account_id, destination_account_id, amount,
			 currency, type, status, payment_id, reservation_id, idempotency_key,
			 description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		transaction.ID,
		transaction.ReferenceNumber,
		transaction.SourceAccountID,
		transaction.DestinationAccountID,
		decimalToNumeric(transaction.Amount),
		transaction.Currency,
		string(transaction.Type),
		string(transaction.Status),
		ptrToText(transaction.PaymentID),
		ptrToText(transaction.ReservationID),
		transaction.IdempotencyKey,
		transaction.Description,
		timeToPgTimestamptz(transaction.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateIdempotency
	}

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	row := queryEngine(r.pool, tx).QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	return scanTransaction(row)
}

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE idempotency_key = $1`, key)
	return scanTransaction(row)
}

// MarkCompleted finalizes a transaction as completed.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, completedAt time.Time) error {
	tag, err := queryEngine(r.pool, tx).Exec(ctx, `
		UPDATE transactions
		SET status = $2, completed_at = $3
		WHERE id = $1`,
		id, string(domain.TransactionStatusCompleted), timeToPgTimestamptz(completedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// MarkFailed finalizes a transaction as failed with a reason.
func (r *TransactionRepository) MarkFailed(ctx context.Context, tx usecase.Transaction, id, reason string) error {
	tag, err := queryEngine(r.pool, tx).Exec(ctx, `
		UPDATE transactions
		SET status = $2, failure_reason = $3
		WHERE id = $1`,
		id, string(domain.TransactionStatusFailed), reason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByAccount retrieves transactions touching an account on either
// side, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		transaction   domain.Transaction
		amount        pgtype.Numeric
		txType        string
		status        string
		paymentID     pgtype.Text
		reservationID pgtype.Text
		failureReason pgtype.Text
		createdAt     pgtype.Timestamptz
		completedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&transaction.ID,
		&transaction.ReferenceNumber,
		&transaction.SourceAccountID,
		&transaction.DestinationAccountID,
		&amount,
		&transaction.Currency,
		&txType,
		&status,
		&paymentID,
		&reservationID,
		&transaction.IdempotencyKey,
		&transaction.Description,
		&failureReason,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	transaction.Amount = numericToDecimal(amount)
	transaction.Type = domain.TransactionType(txType)
	transaction.Status = domain.TransactionStatus(status)
	transaction.PaymentID = textToPtr(paymentID)
	transaction.ReservationID = textToPtr(reservationID)
	transaction.FailureReason = textToPtr(failureReason)
	transaction.CreatedAt = createdAt.Time
	transaction.CompletedAt = pgTimestamptzToTimePtr(completedAt)

	return &transaction, nil
}
