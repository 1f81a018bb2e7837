package engine

import (
	"github.com/shopspring/decimal"
)

var (
	mediumRiskMinRate = decimal.RequireFromString("12.00")
	highRiskMinRate   = decimal.RequireFromString("16.00")
)

// CorrectInterestRate применяет политику ставок по диапазонам рейтинга.
// Возвращает признак возможности одобрения и ставку, которую следует использовать.
//
//	score > 50       - одобрение, ставка без изменений
//	30 < score <= 50 - одобрение, ставка не ниже 12%
//	10 < score <= 30 - одобрение, ставка не ниже 16%
//	score <= 10      - отказ, ставка 0.00
func CorrectInterestRate(creditScore int, requestedRate decimal.Decimal) (bool, decimal.Decimal) {
	switch {
	case creditScore > 50:
		return true, requestedRate
	case creditScore > 30:
		return true, floorRate(requestedRate, mediumRiskMinRate)
	case creditScore > 10:
		return true, floorRate(requestedRate, highRiskMinRate)
	default:
		return false, zero.Round(2)
	}
}

func floorRate(requested, min decimal.Decimal) decimal.Decimal {
	if requested.GreaterThan(min) {
		return requested
	}
	return min
}
