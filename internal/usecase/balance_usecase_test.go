package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
	"github.com/iho/payflow/internal/usecase/mocks"
)

func newBalanceFixture() (*usecase.BalanceUseCase, *mocks.MockAccountRepository, *mocks.MockReservationRepository, *mocks.MockOutboxRepository) {
	accountRepo := mocks.NewMockAccountRepository()
	reservationRepo := mocks.NewMockReservationRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	uc := usecase.NewBalanceUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		reservationRepo,
		outboxRepo,
		mocks.NewMockIDGenerator(),
		nil,
	)
	return uc, accountRepo, reservationRepo, outboxRepo
}

func seedAccount(repo *mocks.MockAccountRepository, id, currency string, balance int64) {
	now := time.Now().UTC()
	repo.Seed(&domain.Account{
		ID:        id,
		Name:      "account " + id,
		Currency:  currency,
		Balance:   decimal.NewFromInt(balance),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func TestBalanceUseCase_Reserve_ReducesAvailableNotActual(t *testing.T) {
	uc, accountRepo, _, outboxRepo := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	reservation, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reservation.Status != domain.ReservationStatusPending {
		t.Errorf("expected pending status, got %s", reservation.Status)
	}

	available, err := uc.GetAvailableBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected available 900, got %s", available)
	}

	// The actual balance must not move until commit.
	account, err := accountRepo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected actual balance 1000, got %s", account.Balance)
	}

	events := outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}
	if events[0].EventType != domain.EventTypeReservationCreated {
		t.Errorf("expected %s event, got %s", domain.EventTypeReservationCreated, events[0].EventType)
	}
	if events[0].AggregateID != reservation.ID {
		t.Errorf("expected aggregate id %s, got %s", reservation.ID, events[0].AggregateID)
	}
}

func TestBalanceUseCase_Reserve_InsufficientAvailable(t *testing.T) {
	uc, accountRepo, reservationRepo, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 100)

	_, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("5000.00"),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}

	var insuffErr *domain.InsufficientBalanceError
	if !errors.As(err, &insuffErr) {
		t.Fatalf("expected *InsufficientBalanceError, got %T", err)
	}
	if !insuffErr.Requested.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("expected requested 5000.00, got %s", insuffErr.Requested)
	}
	if !insuffErr.Available.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected available 100, got %s", insuffErr.Available)
	}

	// No reservation row may exist after a rejection.
	if _, err := reservationRepo.GetByIdempotencyKey(context.Background(), "key-1"); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Errorf("expected no reservation, got %v", err)
	}

	// The balance is unchanged and a smaller reserve still succeeds.
	if _, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(50),
		Currency:       "USD",
		IdempotencyKey: "key-2",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBalanceUseCase_Reserve_PendingHoldsCountAgainstAvailable(t *testing.T) {
	uc, accountRepo, _, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 100)

	if _, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(80),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 80 of 100 is held; a 30 hold must be rejected even though the
	// actual balance would cover it.
	_, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(30),
		Currency:       "USD",
		IdempotencyKey: "key-2",
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
}

func TestBalanceUseCase_Reserve_Idempotent(t *testing.T) {
	uc, accountRepo, _, outboxRepo := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	input := usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	}

	first, err := uc.Reserve(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.Reserve(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same reservation, got %s and %s", first.ID, second.ID)
	}

	// A single hold: available reflects one reservation, not two.
	available, err := uc.GetAvailableBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected available 900, got %s", available)
	}

	if events := outboxRepo.Events(); len(events) != 1 {
		t.Errorf("expected 1 outbox event, got %d", len(events))
	}
}

func TestBalanceUseCase_Reserve_DuplicateRaceReturnsWinner(t *testing.T) {
	uc, accountRepo, reservationRepo, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	winner := &domain.Reservation{
		ID:             "res-winner",
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		Status:         domain.ReservationStatusPending,
		IdempotencyKey: "key-1",
	}

	// First lookup misses, the insert then collides with a concurrent
	// writer and the re-fetch finds its row.
	lookups := 0
	reservationRepo.GetByIdempotencyKeyFunc = func(ctx context.Context, key string) (*domain.Reservation, error) {
		lookups++
		if lookups == 1 {
			return nil, domain.ErrReservationNotFound
		}
		return winner, nil
	}
	reservationRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, r *domain.Reservation) error {
		return domain.ErrDuplicateIdempotency
	}

	got, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "res-winner" {
		t.Errorf("expected winner's reservation, got %s", got.ID)
	}
}

func TestBalanceUseCase_Reserve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.ReserveInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: usecase.ReserveInput{
				AccountID:      "acc-1",
				Amount:         decimal.Zero,
				Currency:       "USD",
				IdempotencyKey: "key-1",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: usecase.ReserveInput{
				AccountID:      "acc-1",
				Amount:         decimal.NewFromInt(-5),
				Currency:       "USD",
				IdempotencyKey: "key-1",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "unknown currency",
			input: usecase.ReserveInput{
				AccountID:      "acc-1",
				Amount:         decimal.NewFromInt(10),
				Currency:       "XXX",
				IdempotencyKey: "key-1",
			},
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name: "missing idempotency key",
			input: usecase.ReserveInput{
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(10),
				Currency:  "USD",
			},
			wantErr: domain.ErrInvalidIdempotencyKey,
		},
		{
			name: "currency mismatch",
			input: usecase.ReserveInput{
				AccountID:      "acc-1",
				Amount:         decimal.NewFromInt(10),
				Currency:       "EUR",
				IdempotencyKey: "key-1",
			},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "unknown account",
			input: usecase.ReserveInput{
				AccountID:      "acc-missing",
				Amount:         decimal.NewFromInt(10),
				Currency:       "USD",
				IdempotencyKey: "key-1",
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, accountRepo, _, _ := newBalanceFixture()
			seedAccount(accountRepo, "acc-1", "USD", 1000)

			_, err := uc.Reserve(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBalanceUseCase_Commit_DeductsActualBalance(t *testing.T) {
	uc, accountRepo, _, outboxRepo := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	reservation, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.Commit(context.Background(), reservation.ID, "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := accountRepo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected actual balance 900, got %s", account.Balance)
	}

	// The hold no longer counts as pending: available equals actual.
	available, err := uc.GetAvailableBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected available 900, got %s", available)
	}

	committed, err := uc.GetReservation(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if committed.Status != domain.ReservationStatusCommitted {
		t.Errorf("expected committed status, got %s", committed.Status)
	}
	if committed.TransactionID == nil || *committed.TransactionID != "tx-1" {
		t.Error("expected transaction id tx-1 on committed reservation")
	}

	events := outboxRepo.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 outbox events, got %d", len(events))
	}
	if events[1].EventType != domain.EventTypeReservationCommitted {
		t.Errorf("expected %s event, got %s", domain.EventTypeReservationCommitted, events[1].EventType)
	}
}

func TestBalanceUseCase_Commit_RejectsNonPending(t *testing.T) {
	uc, accountRepo, _, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	reservation, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.Release(context.Background(), reservation.ID, "caller gave up"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = uc.Commit(context.Background(), reservation.ID, "tx-1")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}

	// The rejected commit must not touch the balance.
	account, _ := accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance 1000, got %s", account.Balance)
	}
}

func TestBalanceUseCase_Release_TerminalStateStaysPut(t *testing.T) {
	uc, accountRepo, _, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	reservation, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.Release(context.Background(), reservation.ID, "not needed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	released, err := uc.GetReservation(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released.Status != domain.ReservationStatusReleased {
		t.Errorf("expected released status, got %s", released.Status)
	}
	if released.ReleaseReason == nil || *released.ReleaseReason != "not needed" {
		t.Error("expected release reason to be recorded")
	}

	// Releasing again is a state-machine violation, not a no-op.
	err = uc.Release(context.Background(), reservation.ID, "again")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}

	// The freed amount is available again.
	available, err := uc.GetAvailableBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected available 1000, got %s", available)
	}
}

func TestBalanceUseCase_Release_RejectsCommitted(t *testing.T) {
	uc, accountRepo, _, _ := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	reservation, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Commit(context.Background(), reservation.ID, "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = uc.Release(context.Background(), reservation.ID, "too late")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestBalanceUseCase_SweepExpired(t *testing.T) {
	uc, accountRepo, _, outboxRepo := newBalanceFixture()
	seedAccount(accountRepo, "acc-1", "USD", 1000)

	short, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "USD",
		IdempotencyKey: "key-short",
		TTL:            time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := uc.Reserve(context.Background(), usecase.ReserveInput{
		AccountID:      "acc-1",
		Amount:         decimal.NewFromInt(200),
		Currency:       "USD",
		IdempotencyKey: "key-long",
		TTL:            time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cutoff := time.Now().UTC().Add(30 * time.Minute)
	swept, err := uc.SweepExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept reservation, got %d", swept)
	}

	expired, err := uc.GetReservation(context.Background(), short.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired.Status != domain.ReservationStatusExpired {
		t.Errorf("expected expired status, got %s", expired.Status)
	}
	if expired.ReleaseReason == nil || *expired.ReleaseReason != domain.ReleaseReasonExpired {
		t.Error("expected expiry release reason")
	}

	alive, err := uc.GetReservation(context.Background(), long.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alive.Status != domain.ReservationStatusPending {
		t.Errorf("expected pending status, got %s", alive.Status)
	}

	// Expiry frees the held amount without touching the actual balance.
	available, err := uc.GetAvailableBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected available 800, got %s", available)
	}

	// A second sweep over the same window finds nothing.
	swept, err = uc.SweepExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 0 {
		t.Errorf("expected 0 swept on second pass, got %d", swept)
	}

	var expiredEvents int
	for _, e := range outboxRepo.Events() {
		if e.EventType == domain.EventTypeReservationExpired {
			expiredEvents++
		}
	}
	if expiredEvents != 1 {
		t.Errorf("expected 1 expired event, got %d", expiredEvents)
	}
}

func TestBalanceUseCase_GetAvailableBalance_UnknownAccount(t *testing.T) {
	uc, _, _, _ := newBalanceFixture()

	_, err := uc.GetAvailableBalance(context.Background(), "acc-missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}
