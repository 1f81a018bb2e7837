package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan представляет кредит клиента
type Loan struct {
	ID                 uint            `gorm:"column:loan_id;primaryKey;autoIncrement"`
	CustomerID         uint            `gorm:"column:customer_id;not null;index"`
	Amount             decimal.Decimal `gorm:"column:loan_amount;type:numeric(12,2);not null"`
	Tenure             int             `gorm:"column:tenure;not null"` // в месяцах
	InterestRate       decimal.Decimal `gorm:"column:interest_rate;type:numeric(5,2);not null"`
	MonthlyInstallment decimal.Decimal `gorm:"column:monthly_installment;type:numeric(12,2);not null"`
	EMIsPaidOnTime     int             `gorm:"column:emis_paid_on_time;not null;default:0"`
	StartDate          *time.Time      `gorm:"column:start_date;type:date"`
	EndDate            *time.Time      `gorm:"column:end_date;type:date"`
	IsActive           bool            `gorm:"column:is_active;not null"`
}

// TableName возвращает имя таблицы для модели Loan
func (Loan) TableName() string {
	return "loans"
}

// ActiveOn сообщает, действует ли кредит на указанную дату.
// Кредит без даты окончания считается действующим, пока установлен флаг IsActive.
func (l Loan) ActiveOn(today time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.EndDate == nil {
		return true
	}
	return !DateOnly(today).After(DateOnly(*l.EndDate))
}

// StartedInYear сообщает, был ли кредит выдан в указанном году
func (l Loan) StartedInYear(year int) bool {
	return l.StartDate != nil && l.StartDate.Year() == year
}

// DateOnly отбрасывает время суток, оставляя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
