package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

// MockTransaction is a mock implementation of usecase.Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// MockAccountRepository is a map-backed mock of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, bypassing any overridden funcs.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockReservationRepository is a map-backed mock of ReservationRepository.
type MockReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
	byKey        map[string]string

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Reservation, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Reservation, error)
	GetByIdempotencyKeyFunc  func(ctx context.Context, key string) (*domain.Reservation, error)
	MarkCommittedFunc        func(ctx context.Context, tx usecase.Transaction, id, transactionID string, committedAt time.Time) error
	MarkReleasedFunc         func(ctx context.Context, tx usecase.Transaction, id string, status domain.ReservationStatus, reason string, releasedAt time.Time) error
	SumPendingByAccountFunc  func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error)
	ListExpiredForUpdateFunc func(ctx context.Context, tx usecase.Transaction, before time.Time, limit int) ([]*domain.Reservation, error)
	ListByAccountFunc        func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Reservation, error)
}

func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{
		reservations: make(map[string]*domain.Reservation),
		byKey:        make(map[string]string),
	}
}

func (m *MockReservationRepository) Create(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byKey[reservation.IdempotencyKey]; exists {
		return domain.ErrDuplicateIdempotency
	}
	m.reservations[reservation.ID] = reservation
	m.byKey[reservation.IdempotencyKey] = reservation.ID
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockReservationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Reservation, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byKey[key]; ok {
		return m.reservations[id], nil
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockReservationRepository) MarkCommitted(ctx context.Context, tx usecase.Transaction, id, transactionID string, committedAt time.Time) error {
	if m.MarkCommittedFunc != nil {
		return m.MarkCommittedFunc(ctx, tx, id, transactionID, committedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Status = domain.ReservationStatusCommitted
	r.TransactionID = &transactionID
	r.CommittedAt = &committedAt
	return nil
}

func (m *MockReservationRepository) MarkReleased(ctx context.Context, tx usecase.Transaction, id string, status domain.ReservationStatus, reason string, releasedAt time.Time) error {
	if m.MarkReleasedFunc != nil {
		return m.MarkReleasedFunc(ctx, tx, id, status, reason, releasedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Status = status
	r.ReleaseReason = &reason
	r.ReleasedAt = &releasedAt
	return nil
}

func (m *MockReservationRepository) SumPendingByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	if m.SumPendingByAccountFunc != nil {
		return m.SumPendingByAccountFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, r := range m.reservations {
		if r.AccountID == accountID && r.Status == domain.ReservationStatusPending {
			sum = sum.Add(r.Amount)
		}
	}
	return sum, nil
}

func (m *MockReservationRepository) ListExpiredForUpdate(ctx context.Context, tx usecase.Transaction, before time.Time, limit int) ([]*domain.Reservation, error) {
	if m.ListExpiredForUpdateFunc != nil {
		return m.ListExpiredForUpdateFunc(ctx, tx, before, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var expired []*domain.Reservation
	for _, r := range m.reservations {
		if r.Status == domain.ReservationStatusPending && r.ExpiresAt.Before(before) {
			expired = append(expired, r)
			if len(expired) == limit {
				break
			}
		}
	}
	return expired, nil
}

func (m *MockReservationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Reservation, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var reservations []*domain.Reservation
	for _, r := range m.reservations {
		if r.AccountID == accountID {
			reservations = append(reservations, r)
		}
	}
	return reservations, nil
}

// MockTransactionRepository is a map-backed mock of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	byKey        map[string]string

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, key string) (*domain.Transaction, error)
	MarkCompletedFunc       func(ctx context.Context, tx usecase.Transaction, id string, completedAt time.Time) error
	MarkFailedFunc          func(ctx context.Context, tx usecase.Transaction, id, reason string) error
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
		byKey:        make(map[string]string),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byKey[transaction.IdempotencyKey]; exists {
		return domain.ErrDuplicateIdempotency
	}
	m.transactions[transaction.ID] = transaction
	m.byKey[transaction.IdempotencyKey] = transaction.ID
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byKey[key]; ok {
		return m.transactions[id], nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, completedAt time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, tx, id, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = domain.TransactionStatusCompleted
	t.CompletedAt = &completedAt
	return nil
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, tx usecase.Transaction, id, reason string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, tx, id, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = domain.TransactionStatusFailed
	t.FailureReason = &reason
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transactions []*domain.Transaction
	for _, t := range m.transactions {
		if t.SourceAccountID == accountID || t.DestinationAccountID == accountID {
			transactions = append(transactions, t)
		}
	}
	return transactions, nil
}

// MockPaymentRepository is a map-backed mock of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	ListByStatusFunc     func(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// Seed stores a payment directly, bypassing any overridden funcs.
func (m *MockPaymentRepository) Seed(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) Update(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *MockPaymentRepository) ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.Payment
	for _, p := range m.payments {
		if p.Status == status {
			copied := *p
			payments = append(payments, &copied)
		}
	}
	return payments, nil
}

// MockOutboxRepository is a slice-backed mock of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			unpublished = append(unpublished, e)
			if len(unpublished) == limit {
				break
			}
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns all recorded events in creation order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}
