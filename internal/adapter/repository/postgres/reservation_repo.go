package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

const reservationColumns = `id, account_id, amount, currency, status, idempotency_key,
	transaction_id, release_reason, expires_at, created_at, committed_at, released_at`

// ReservationRepository implements usecase.ReservationRepository.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository creates a new ReservationRepository.
func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create inserts a new reservation. The unique index on
// idempotency_key turns a concurrent duplicate into
// domain.ErrDuplicateIdempotency.
func (r *ReservationRepository) Create(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error {
	_, err := queryEngine(r.pool, tx).Exec(ctx, `
		INSERT INTO reservations
			(id, account_id, amount, currency, status, idempotency_key, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reservation.ID,
		reservation.AccountID,
		decimalToNumeric(reservation.Amount),
		reservation.Currency,
		string(reservation.Status),
		reservation.IdempotencyKey,
		timeToPgTimestamptz(reservation.ExpiresAt),
		timeToPgTimestamptz(reservation.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateIdempotency
	}

	return err
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

// GetByIDForUpdate retrieves a reservation by ID with a FOR UPDATE
// lock, so state checks and the following write are atomic.
func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Reservation, error) {
	row := queryEngine(r.pool, tx).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	return scanReservation(row)
}

// GetByIdempotencyKey retrieves a reservation by its idempotency key.
func (r *ReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE idempotency_key = $1`, key)
	return scanReservation(row)
}

// MarkCommitted finalizes a reservation as committed.
func (r *ReservationRepository) MarkCommitted(ctx context.Context, tx usecase.Transaction, id, transactionID string, committedAt time.Time) error {
	tag, err := queryEngine(r.pool, tx).Exec(ctx, `
		UPDATE reservations
		SET status = $2, transaction_id = $3, committed_at = $4
		WHERE id = $1`,
		id, string(domain.ReservationStatusCommitted), transactionID, timeToPgTimestamptz(committedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}

// MarkReleased finalizes a reservation as released or expired.
func (r *ReservationRepository) MarkReleased(ctx context.Context, tx usecase.Transaction, id string, status domain.ReservationStatus, reason string, releasedAt time.Time) error {
	tag, err := queryEngine(r.pool, tx).Exec(ctx, `
		UPDATE reservations
		SET status = $2, release_reason = $3, released_at = $4
		WHERE id = $1`,
		id, string(status), reason, timeToPgTimestamptz(releasedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}

// SumPendingByAccount returns the sum of pending holds on one account.
// tx may be nil for a plain read outside any transaction.
func (r *ReservationRepository) SumPendingByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := queryEngine(r.pool, tx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM reservations
		WHERE account_id = $1 AND status = $2`,
		accountID, string(domain.ReservationStatusPending),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// ListExpiredForUpdate returns pending reservations past their TTL,
// locked for the sweep. SKIP LOCKED keeps concurrent sweepers and
// in-flight commits from blocking each other: a row a commit holds is
// simply not expired by this pass.
func (r *ReservationRepository) ListExpiredForUpdate(ctx context.Context, tx usecase.Transaction, before time.Time, limit int) ([]*domain.Reservation, error) {
	rows, err := queryEngine(r.pool, tx).Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		string(domain.ReservationStatusPending), timeToPgTimestamptz(before), int32(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByAccount retrieves reservations for an account, newest first.
func (r *ReservationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReservations(rows)
}

func scanReservations(rows pgx.Rows) ([]*domain.Reservation, error) {
	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	return reservations, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		reservation   domain.Reservation
		amount        pgtype.Numeric
		status        string
		transactionID pgtype.Text
		releaseReason pgtype.Text
		expiresAt     pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		committedAt   pgtype.Timestamptz
		releasedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.AccountID,
		&amount,
		&reservation.Currency,
		&status,
		&reservation.IdempotencyKey,
		&transactionID,
		&releaseReason,
		&expiresAt,
		&createdAt,
		&committedAt,
		&releasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	reservation.Amount = numericToDecimal(amount)
	reservation.Status = domain.ReservationStatus(status)
	reservation.TransactionID = textToPtr(transactionID)
	reservation.ReleaseReason = textToPtr(releaseReason)
	reservation.ExpiresAt = expiresAt.Time
	reservation.CreatedAt = createdAt.Time
	reservation.CommittedAt = pgTimestamptzToTimePtr(committedAt)
	reservation.ReleasedAt = pgTimestamptzToTimePtr(releasedAt)

	return &reservation, nil
}
