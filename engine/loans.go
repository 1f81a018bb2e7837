package engine

import (
	"time"

	"creditapproval/models"
	"github.com/shopspring/decimal"
)

// ActiveDebt возвращает сумму действующих на дату today кредитов
func ActiveDebt(loans []models.Loan, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		if loan.ActiveOn(today) {
			total = total.Add(loan.Amount)
		}
	}
	return total
}

// ActiveInstallments возвращает сумму ежемесячных платежей по действующим кредитам
func ActiveInstallments(loans []models.Loan, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		if loan.ActiveOn(today) {
			total = total.Add(loan.MonthlyInstallment)
		}
	}
	return total
}

// RepaymentsLeft возвращает количество оставшихся платежей по кредиту
func RepaymentsLeft(loan models.Loan) int {
	if left := loan.Tenure - loan.EMIsPaidOnTime; left > 0 {
		return left
	}
	return 0
}

// AddMonths прибавляет к дате n календарных месяцев. Если в целевом месяце
// нет такого дня, берется последний день месяца (31 января + 1 = 28/29 февраля).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
