package engine

import (
	"github.com/shopspring/decimal"
)

var (
	limitSalaryMonths = decimal.NewFromInt(36)
	limitRoundingUnit = decimal.NewFromInt(100000)
)

// ComputeApprovedLimit рассчитывает кредитный лимит при регистрации:
// 36 месячных зарплат, округленные до ближайших 100 000.
func ComputeApprovedLimit(monthlySalary decimal.Decimal) decimal.Decimal {
	units := monthlySalary.Mul(limitSalaryMonths).Div(limitRoundingUnit).Round(0)
	return units.Mul(limitRoundingUnit)
}
