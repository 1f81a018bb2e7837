package engine

import (
	"time"

	"creditapproval/models"
	"github.com/shopspring/decimal"
)

const (
	// NeutralScore выставляется клиенту без кредитной истории
	NeutralScore = 50
	minScore     = 0
	maxScore     = 100
)

// CalculateCreditScore рассчитывает кредитный рейтинг клиента (0-100) по всей его
// кредитной истории. today определяет текущий год и актуальность кредитов.
func CalculateCreditScore(customer models.Customer, loans []models.Loan, today time.Time) int {
	// Нет истории - нейтральный рейтинг
	if len(loans) == 0 {
		return NeutralScore
	}

	// Сумма действующих кредитов превышает лимит - рейтинг обнуляется
	if ActiveDebt(loans, today).GreaterThan(customer.ApprovedLimit) {
		return minScore
	}

	score := onTimeScore(loans) +
		loanCountScore(len(loans)) +
		currentYearScore(loans, today.Year()) +
		volumeScore(loans, customer.ApprovedLimit)

	return clamp(score, minScore, maxScore)
}

// onTimeScore - до 30 баллов за долю платежей, внесенных вовремя
func onTimeScore(loans []models.Loan) int {
	var scheduled, onTime int
	for _, loan := range loans {
		scheduled += loan.Tenure
		onTime += loan.EMIsPaidOnTime
	}
	if scheduled <= 0 {
		return 0
	}
	return 30 * onTime / scheduled
}

// loanCountScore - меньше кредитов, выше балл
func loanCountScore(count int) int {
	switch {
	case count >= 10:
		return 10
	case count >= 5:
		return 15
	default:
		return 20
	}
}

// currentYearScore оценивает активность заимствований в текущем году
func currentYearScore(loans []models.Loan, year int) int {
	var count int
	for _, loan := range loans {
		if loan.StartedInYear(year) {
			count++
		}
	}

	switch {
	case count == 0:
		return 20
	case count <= 2:
		return 15
	case count <= 5:
		return 10
	default:
		return 5
	}
}

// volumeScore сравнивает общий объем кредитов с одобренным лимитом
func volumeScore(loans []models.Loan, approvedLimit decimal.Decimal) int {
	if !approvedLimit.IsPositive() {
		return 0
	}

	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(loan.Amount)
	}

	// Отношение используется только для выбора диапазона, поэтому float допустим
	ratio := total.DivRound(approvedLimit, compoundPrecision).InexactFloat64()
	switch {
	case ratio <= 0.3:
		return 30
	case ratio <= 0.5:
		return 25
	case ratio <= 0.8:
		return 15
	case ratio <= 1.0:
		return 10
	default:
		return 5
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
