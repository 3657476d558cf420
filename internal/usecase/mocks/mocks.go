package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
)

// MockSheetRepository is a mock implementation of SheetRepository.
type MockSheetRepository struct {
	mu     sync.RWMutex
	sheets map[string]*domain.Sheet

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Sheet, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sheet, error)
	ExistsByNameFunc     func(ctx context.Context, tx usecase.Transaction, bookCode, name string) (bool, error)
	UpdateAggregatesFunc func(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error
	UpdateMetaFunc       func(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.SheetStatus, actor string, at time.Time) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListFunc             func(ctx context.Context, filter usecase.SheetFilter) ([]*domain.Sheet, error)
}

func NewMockSheetRepository() *MockSheetRepository {
	return &MockSheetRepository{
		sheets: make(map[string]*domain.Sheet),
	}
}

func (m *MockSheetRepository) Create(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sheet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sheet
	m.sheets[sheet.ID] = &copied
	return nil
}

func (m *MockSheetRepository) GetByID(ctx context.Context, id string) (*domain.Sheet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sheets[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrSheetNotFound
}

func (m *MockSheetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sheet, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSheetRepository) ExistsByName(ctx context.Context, tx usecase.Transaction, bookCode, name string) (bool, error) {
	if m.ExistsByNameFunc != nil {
		return m.ExistsByNameFunc(ctx, tx, bookCode, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sheets {
		if s.BookCode == bookCode && s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSheetRepository) UpdateAggregates(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	if m.UpdateAggregatesFunc != nil {
		return m.UpdateAggregatesFunc(ctx, tx, sheet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sheets[sheet.ID]
	if !ok {
		return domain.ErrSheetNotFound
	}
	stored.OpeningBalance = sheet.OpeningBalance
	stored.TotalCredit = sheet.TotalCredit
	stored.TotalDebit = sheet.TotalDebit
	stored.ClosingBalance = sheet.ClosingBalance
	stored.UpdatedBy = sheet.UpdatedBy
	stored.UpdatedAt = sheet.UpdatedAt
	return nil
}

func (m *MockSheetRepository) UpdateMeta(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	if m.UpdateMetaFunc != nil {
		return m.UpdateMetaFunc(ctx, tx, sheet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sheets[sheet.ID]
	if !ok {
		return domain.ErrSheetNotFound
	}
	stored.Name = sheet.Name
	stored.Description = sheet.Description
	stored.Locked = sheet.Locked
	stored.UpdatedBy = sheet.UpdatedBy
	stored.UpdatedAt = sheet.UpdatedAt
	return nil
}

func (m *MockSheetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SheetStatus, actor string, at time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, actor, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sheets[id]
	if !ok {
		return domain.ErrSheetNotFound
	}
	stored.Status = status
	stored.UpdatedBy = actor
	stored.UpdatedAt = at
	return nil
}

func (m *MockSheetRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[id]; !ok {
		return domain.ErrSheetNotFound
	}
	delete(m.sheets, id)
	return nil
}

func (m *MockSheetRepository) List(ctx context.Context, filter usecase.SheetFilter) ([]*domain.Sheet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sheets []*domain.Sheet
	for _, s := range m.sheets {
		if filter.BookCode != "" && s.BookCode != filter.BookCode {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		copied := *s
		sheets = append(sheets, &copied)
	}
	return sheets, nil
}

// MockEntryRepository is a mock implementation of EntryRepository. Its
// default SumBySheet recomputes totals from the stored entries, so engine
// tests exercise the real recompute path.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDTxFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error)
	UpdateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	DeleteFunc        func(ctx context.Context, tx usecase.Transaction, id string) error
	ListBySheetFunc   func(ctx context.Context, sheetID string, limit, offset int) ([]*domain.Entry, error)
	ListBySheetTxFunc func(ctx context.Context, tx usecase.Transaction, sheetID string) ([]*domain.Entry, error)
	CountBySheetFunc  func(ctx context.Context, tx usecase.Transaction, sheetID string) (int64, error)
	SumBySheetFunc    func(ctx context.Context, tx usecase.Transaction, sheetID string) (decimal.Decimal, decimal.Decimal, error)
	SumByTagFunc      func(ctx context.Context, sheetID string) ([]domain.TagTotal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MockEntryRepository) ListBySheet(ctx context.Context, sheetID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListBySheetFunc != nil {
		return m.ListBySheetFunc(ctx, sheetID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.SheetID == sheetID {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) ListBySheetTx(ctx context.Context, tx usecase.Transaction, sheetID string) ([]*domain.Entry, error) {
	if m.ListBySheetTxFunc != nil {
		return m.ListBySheetTxFunc(ctx, tx, sheetID)
	}
	return m.ListBySheet(ctx, sheetID, 0, 0)
}

func (m *MockEntryRepository) CountBySheet(ctx context.Context, tx usecase.Transaction, sheetID string) (int64, error) {
	if m.CountBySheetFunc != nil {
		return m.CountBySheetFunc(ctx, tx, sheetID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, e := range m.entries {
		if e.SheetID == sheetID {
			count++
		}
	}
	return count, nil
}

func (m *MockEntryRepository) SumBySheet(ctx context.Context, tx usecase.Transaction, sheetID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumBySheetFunc != nil {
		return m.SumBySheetFunc(ctx, tx, sheetID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	credit, debit := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.SheetID == sheetID {
			credit = credit.Add(e.CreditAmount)
			debit = debit.Add(e.DebitAmount)
		}
	}
	return credit, debit, nil
}

func (m *MockEntryRepository) SumByTag(ctx context.Context, sheetID string) ([]domain.TagTotal, error) {
	if m.SumByTagFunc != nil {
		return m.SumByTagFunc(ctx, sheetID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byTag := make(map[string]*domain.TagTotal)
	for _, e := range m.entries {
		if e.SheetID != sheetID {
			continue
		}
		total, ok := byTag[e.Tag]
		if !ok {
			total = &domain.TagTotal{Tag: e.Tag, TotalCredit: decimal.Zero, TotalDebit: decimal.Zero}
			byTag[e.Tag] = total
		}
		total.TotalCredit = total.TotalCredit.Add(e.CreditAmount)
		total.TotalDebit = total.TotalDebit.Add(e.DebitAmount)
		total.EntryCount++
	}
	var totals []domain.TagTotal
	for _, total := range byTag {
		totals = append(totals, *total)
	}
	return totals, nil
}

// MockContainerRepository is a mock implementation of ContainerRepository.
type MockContainerRepository struct {
	mu         sync.RWMutex
	containers map[string]*domain.ContainerSummary

	CreateFunc  func(ctx context.Context, tx usecase.Transaction, summary *domain.ContainerSummary) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.ContainerSummary, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.ContainerSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func NewMockContainerRepository() *MockContainerRepository {
	return &MockContainerRepository{
		containers: make(map[string]*domain.ContainerSummary),
	}
}

func (m *MockContainerRepository) Create(ctx context.Context, tx usecase.Transaction, summary *domain.ContainerSummary) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, summary)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *summary
	m.containers[summary.ID] = &copied
	return nil
}

func (m *MockContainerRepository) GetByID(ctx context.Context, id string) (*domain.ContainerSummary, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.containers[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrContainerNotFound
}

func (m *MockContainerRepository) List(ctx context.Context, limit, offset int) ([]*domain.ContainerSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var summaries []*domain.ContainerSummary
	for _, c := range m.containers {
		copied := *c
		summaries = append(summaries, &copied)
	}
	return summaries, nil
}

func (m *MockContainerRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.containers[id]; !ok {
		return domain.ErrContainerNotFound
	}
	delete(m.containers, id)
	return nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	FindDriftFunc func(ctx context.Context) ([]usecase.Drift, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) FindDrift(ctx context.Context) ([]usecase.Drift, error) {
	if m.FindDriftFunc != nil {
		return m.FindDriftFunc(ctx)
	}
	return nil, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateTxFunc       func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListByResourceFunc func(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *log
	m.logs = append(m.logs, &copied)
	return nil
}

func (m *MockAuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
	if m.ListByResourceFunc != nil {
		return m.ListByResourceFunc(ctx, resourceType, resourceID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// Logs returns every audit record created so far.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
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

// MockTransaction is a mock implementation of Transaction.
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

// MockRetrier runs the operation once without any backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
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
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock implementation of Cache backed by a map.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

// ErrCacheMiss is returned by MockCache.Get for absent keys.
var ErrCacheMiss = fmt.Errorf("cache miss")

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Contains reports whether a key is currently cached.
func (m *MockCache) Contains(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}
