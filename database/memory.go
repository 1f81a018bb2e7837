package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"creditapproval/models"

	"github.com/shopspring/decimal"
)

// MemoryStore хранит клиентов и кредиты в памяти процесса.
// Используется в тестах и при запуске с --store=memory.
type MemoryStore struct {
	mu             sync.RWMutex
	customers      map[uint]models.Customer
	loans          map[uint]models.Loan
	nextCustomerID uint
	nextLoanID     uint

	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex
}

// NewMemoryStore создает пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:      make(map[uint]models.Customer),
		loans:          make(map[uint]models.Loan),
		nextCustomerID: 1,
		nextLoanID:     1,
		locks:          make(map[uint]*sync.Mutex),
	}
}

func (m *MemoryStore) FindCustomer(_ context.Context, id uint) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &customer, nil
}

func (m *MemoryStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if customer.ID == 0 {
		for m.customers[m.nextCustomerID].ID != 0 {
			m.nextCustomerID++
		}
		customer.ID = m.nextCustomerID
		m.nextCustomerID++
	}
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	m.customers[customer.ID] = *customer
	return nil
}

func (m *MemoryStore) UpdateCustomerDebt(_ context.Context, id uint, debt decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	customer, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	customer.CurrentDebt = debt
	customer.UpdatedAt = time.Now()
	m.customers[id] = customer
	return nil
}

func (m *MemoryStore) CustomerExists(_ context.Context, id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.customers[id]
	return ok, nil
}

func (m *MemoryStore) ListLoans(_ context.Context, customerID uint) ([]models.Loan, error) {
	return m.filterLoans(func(l models.Loan) bool { return l.CustomerID == customerID }), nil
}

func (m *MemoryStore) ListActiveLoans(_ context.Context, customerID uint, today time.Time) ([]models.Loan, error) {
	return m.filterLoans(func(l models.Loan) bool {
		return l.CustomerID == customerID && l.ActiveOn(today)
	}), nil
}

func (m *MemoryStore) filterLoans(keep func(models.Loan) bool) []models.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var loans []models.Loan
	for _, loan := range m.loans {
		if keep(loan) {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans
}

func (m *MemoryStore) FindLoan(_ context.Context, loanID uint) (*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan, ok := m.loans[loanID]
	if !ok {
		return nil, ErrNotFound
	}
	return &loan, nil
}

func (m *MemoryStore) CreateLoan(_ context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customers[loan.CustomerID]; !ok {
		return ErrNotFound
	}
	if loan.ID == 0 {
		for m.loans[m.nextLoanID].ID != 0 {
			m.nextLoanID++
		}
		loan.ID = m.nextLoanID
		m.nextLoanID++
	}
	m.loans[loan.ID] = *loan
	return nil
}

// WithCustomerLock сериализует вызовы fn для одного клиента
func (m *MemoryStore) WithCustomerLock(ctx context.Context, id uint, fn func(Repository) error) error {
	if ok, _ := m.CustomerExists(ctx, id); !ok {
		return ErrNotFound
	}

	m.locksMu.Lock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	m.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(m)
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) UpsertCustomer(_ context.Context, customer *models.Customer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	customer.CurrentDebt = decimal.Zero
	customer.UpdatedAt = now
	existing, ok := m.customers[customer.ID]
	if ok {
		customer.CreatedAt = existing.CreatedAt
	} else {
		customer.CreatedAt = now
	}
	m.customers[customer.ID] = *customer
	return !ok, nil
}

func (m *MemoryStore) UpsertLoan(_ context.Context, loan *models.Loan) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.loans[loan.ID]
	m.loans[loan.ID] = *loan
	return !ok, nil
}

func (m *MemoryStore) RecomputeAllDebts(_ context.Context, today time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	debts := make(map[uint]decimal.Decimal, len(m.customers))
	for _, loan := range m.loans {
		if loan.ActiveOn(today) {
			debts[loan.CustomerID] = debts[loan.CustomerID].Add(loan.Amount)
		}
	}
	for id, customer := range m.customers {
		customer.CurrentDebt = debts[id].Round(2)
		m.customers[id] = customer
	}
	return nil
}

func (m *MemoryStore) DeactivateMaturedLoans(_ context.Context, today time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, loan := range m.loans {
		if loan.IsActive && loan.EndDate != nil && models.DateOnly(*loan.EndDate).Before(models.DateOnly(today)) {
			loan.IsActive = false
			m.loans[id] = loan
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ResetSequences(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextCustomerID, m.nextLoanID = 1, 1
	for id := range m.customers {
		if id >= m.nextCustomerID {
			m.nextCustomerID = id + 1
		}
	}
	for id := range m.loans {
		if id >= m.nextLoanID {
			m.nextLoanID = id + 1
		}
	}
	return nil
}
