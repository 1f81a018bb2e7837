package engine

import (
	"time"

	"creditapproval/models"
	"github.com/shopspring/decimal"
)

// maxInstallmentShare - доля зарплаты, которую могут занимать все ежемесячные платежи
var maxInstallmentShare = decimal.RequireFromString("0.5")

// Eligibility - результат проверки возможности выдачи кредита
type Eligibility struct {
	CustomerID            uint
	CreditScore           int
	Approval              bool
	InterestRate          decimal.Decimal
	CorrectedInterestRate *decimal.Decimal // nil, если ставка не корректировалась
	Tenure                int
	MonthlyInstallment    decimal.Decimal
}

// EffectiveRate возвращает ставку, по которой будет выдан кредит
func (e Eligibility) EffectiveRate() decimal.Decimal {
	if e.CorrectedInterestRate != nil {
		return *e.CorrectedInterestRate
	}
	return e.InterestRate
}

// CheckLoanEligibility принимает решение по заявке. Одобрение требует
// одновременно подходящего рейтинга и платежеспособности: сумма платежей по
// действующим кредитам вместе с новым не должна превышать половину зарплаты.
func CheckLoanEligibility(
	customer models.Customer,
	loans []models.Loan,
	amount decimal.Decimal,
	requestedRate decimal.Decimal,
	tenure int,
	today time.Time,
) Eligibility {
	score := CalculateCreditScore(customer, loans, today)

	// Проверяем диапазон ставки
	canApprove, effectiveRate := CorrectInterestRate(score, requestedRate)

	// Проверяем платежеспособность
	newEMI := CalculateEMI(amount, effectiveRate, tenure)
	totalAfter := ActiveInstallments(loans, today).Add(newEMI)
	if totalAfter.GreaterThan(customer.MonthlySalary.Mul(maxInstallmentShare)) {
		canApprove = false
	}

	result := Eligibility{
		CustomerID:         customer.ID,
		CreditScore:        score,
		Approval:           canApprove,
		InterestRate:       requestedRate,
		Tenure:             tenure,
		MonthlyInstallment: zero.Round(2),
	}

	if !effectiveRate.Equal(requestedRate) {
		corrected := effectiveRate
		result.CorrectedInterestRate = &corrected
	}

	if canApprove {
		result.MonthlyInstallment = newEMI
	}

	return result
}
