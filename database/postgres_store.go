package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creditapproval/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

func (d *Database) db(ctx context.Context) *gorm.DB {
	return d.DB.WithContext(ctx)
}

// Методы для работы с клиентами

func (d *Database) FindCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := d.db(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения клиента %d: %w", id, err)
	}
	return &customer, nil
}

func (d *Database) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := d.db(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("ошибка создания клиента: %w", err)
	}
	return nil
}

func (d *Database) UpdateCustomerDebt(ctx context.Context, id uint, debt decimal.Decimal) error {
	result := d.db(ctx).Model(&models.Customer{}).
		Where("customer_id = ?", id).
		Updates(map[string]interface{}{
			"current_debt": debt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления задолженности клиента %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) CustomerExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := d.db(ctx).Model(&models.Customer{}).Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ошибка проверки клиента %d: %w", id, err)
	}
	return count > 0, nil
}

// WithCustomerLock открывает транзакцию и блокирует строку клиента (SELECT ... FOR UPDATE)
func (d *Database) WithCustomerLock(ctx context.Context, id uint, fn func(Repository) error) error {
	// Начинаем транзакцию
	tx := d.db(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", tx.Error)
	}

	var customer models.Customer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&customer, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка блокировки клиента %d: %w", id, err)
	}

	if err := fn(&Database{DB: tx}); err != nil {
		tx.Rollback()
		return err
	}

	// Фиксируем транзакцию
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Методы для работы с кредитами

func (d *Database) ListLoans(ctx context.Context, customerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := d.db(ctx).Where("customer_id = ?", customerID).Order("loan_id").Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кредитов клиента %d: %w", customerID, err)
	}
	return loans, nil
}

func (d *Database) ListActiveLoans(ctx context.Context, customerID uint, today time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := d.db(ctx).
		Where("customer_id = ? AND is_active AND (end_date IS NULL OR end_date >= ?)", customerID, today.Format(dateLayout)).
		Order("loan_id").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка получения действующих кредитов клиента %d: %w", customerID, err)
	}
	return loans, nil
}

func (d *Database) FindLoan(ctx context.Context, loanID uint) (*models.Loan, error) {
	var loan models.Loan
	if err := d.db(ctx).First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения кредита %d: %w", loanID, err)
	}
	return &loan, nil
}

func (d *Database) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if err := d.db(ctx).Create(loan).Error; err != nil {
		return fmt.Errorf("ошибка создания кредита: %w", err)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Массовая загрузка

// UpsertCustomer создает клиента или перезаписывает существующего.
// Текущая задолженность обнуляется и пересчитывается после загрузки кредитов.
func (d *Database) UpsertCustomer(ctx context.Context, customer *models.Customer) (bool, error) {
	exists, err := d.CustomerExists(ctx, customer.ID)
	if err != nil {
		return false, err
	}
	customer.CurrentDebt = decimal.Zero
	if !exists {
		if err := d.db(ctx).Create(customer).Error; err != nil {
			return false, fmt.Errorf("ошибка создания клиента %d: %w", customer.ID, err)
		}
		return true, nil
	}

	err = d.db(ctx).Model(&models.Customer{}).
		Where("customer_id = ?", customer.ID).
		Updates(map[string]interface{}{
			"first_name":     customer.FirstName,
			"last_name":      customer.LastName,
			"age":            customer.Age,
			"phone_number":   customer.PhoneNumber,
			"monthly_salary": customer.MonthlySalary,
			"approved_limit": customer.ApprovedLimit,
			"current_debt":   customer.CurrentDebt,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		return false, fmt.Errorf("ошибка обновления клиента %d: %w", customer.ID, err)
	}
	return false, nil
}

// UpsertLoan создает кредит или перезаписывает существующий с тем же loan_id
func (d *Database) UpsertLoan(ctx context.Context, loan *models.Loan) (bool, error) {
	var count int64
	if err := d.db(ctx).Model(&models.Loan{}).Where("loan_id = ?", loan.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ошибка проверки кредита %d: %w", loan.ID, err)
	}
	if count == 0 {
		if err := d.db(ctx).Create(loan).Error; err != nil {
			return false, fmt.Errorf("ошибка создания кредита %d: %w", loan.ID, err)
		}
		return true, nil
	}

	err := d.db(ctx).Model(&models.Loan{}).
		Where("loan_id = ?", loan.ID).
		Updates(map[string]interface{}{
			"customer_id":         loan.CustomerID,
			"loan_amount":         loan.Amount,
			"tenure":              loan.Tenure,
			"interest_rate":       loan.InterestRate,
			"monthly_installment": loan.MonthlyInstallment,
			"emis_paid_on_time":   loan.EMIsPaidOnTime,
			"start_date":          loan.StartDate,
			"end_date":            loan.EndDate,
			"is_active":           loan.IsActive,
		}).Error
	if err != nil {
		return false, fmt.Errorf("ошибка обновления кредита %d: %w", loan.ID, err)
	}
	return false, nil
}

// RecomputeAllDebts пересчитывает задолженность каждого клиента как сумму действующих кредитов
func (d *Database) RecomputeAllDebts(ctx context.Context, today time.Time) error {
	err := d.db(ctx).Exec(`
		UPDATE customers c SET
			current_debt = COALESCE((
				SELECT SUM(l.loan_amount) FROM loans l
				WHERE l.customer_id = c.customer_id
				  AND l.is_active
				  AND (l.end_date IS NULL OR l.end_date >= ?)
			), 0),
			updated_at = NOW()`, today.Format(dateLayout)).Error
	if err != nil {
		return fmt.Errorf("ошибка пересчета задолженности: %w", err)
	}
	return nil
}

// DeactivateMaturedLoans снимает флаг is_active с кредитов, срок которых истек
func (d *Database) DeactivateMaturedLoans(ctx context.Context, today time.Time) (int64, error) {
	result := d.db(ctx).Model(&models.Loan{}).
		Where("is_active AND end_date < ?", today.Format(dateLayout)).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка закрытия погашенных кредитов: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ResetSequences выравнивает последовательности идентификаторов после вставки с явными ID
func (d *Database) ResetSequences(ctx context.Context) error {
	for _, t := range []struct{ table, column string }{
		{"customers", "customer_id"},
		{"loans", "loan_id"},
	} {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), COALESCE(MAX(%[2]s), 1), MAX(%[2]s) IS NOT NULL) FROM %[1]s",
			t.table, t.column)
		if err := d.db(ctx).Exec(query).Error; err != nil {
			return fmt.Errorf("ошибка сброса последовательности %s: %w", t.table, err)
		}
	}
	return nil
}
