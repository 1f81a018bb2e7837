package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer представляет клиента, которому выдаются кредиты
type Customer struct {
	ID            uint            `gorm:"column:customer_id;primaryKey;autoIncrement"`
	FirstName     string          `gorm:"column:first_name;not null;size:100"`
	LastName      string          `gorm:"column:last_name;not null;size:100"`
	Age           *int            `gorm:"column:age"`
	PhoneNumber   string          `gorm:"column:phone_number;not null;size:20"`
	MonthlySalary decimal.Decimal `gorm:"column:monthly_salary;type:numeric(12,2);not null"`
	ApprovedLimit decimal.Decimal `gorm:"column:approved_limit;type:numeric(12,2);not null"`
	CurrentDebt   decimal.Decimal `gorm:"column:current_debt;type:numeric(12,2);not null;default:0"`
	Loans         []Loan          `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Customer
func (Customer) TableName() string {
	return "customers"
}

// FullName возвращает имя и фамилию через пробел
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
