// Package engine содержит кредитный движок: расчет скоринга, корректировку ставки,
// расчет аннуитетного платежа и решение о выдаче кредита.
// Функции пакета не выполняют ввод-вывод и не зависят от хранилища.
package engine

import (
	"github.com/shopspring/decimal"
)

// compoundPrecision - число знаков после запятой для промежуточных вычислений
const compoundPrecision = 28

var (
	zero         = decimal.Zero
	one          = decimal.NewFromInt(1)
	monthsByRate = decimal.NewFromInt(1200) // 12 месяцев * 100 процентов
)

// CalculateEMI рассчитывает ежемесячный аннуитетный платеж:
// EMI = P * r * (1 + r)^n / ((1 + r)^n - 1), где r = годовая ставка / 1200.
// Результат округляется один раз, до копеек, половина - от нуля.
func CalculateEMI(principal, annualRate decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 {
		return zero.Round(2)
	}

	n := decimal.NewFromInt(int64(tenureMonths))

	// Беспроцентный кредит: простое деление
	if !annualRate.IsPositive() {
		return principal.DivRound(n, 2)
	}

	monthlyRate := annualRate.DivRound(monthsByRate, compoundPrecision)
	factor := compoundFactor(one.Add(monthlyRate), tenureMonths)

	emi := principal.Mul(monthlyRate).Mul(factor).DivRound(factor.Sub(one), compoundPrecision)
	return emi.Round(2)
}

// compoundFactor возводит base в степень n с ограниченной точностью,
// чтобы длинные сроки не раздували мантиссу
func compoundFactor(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(compoundPrecision)
		}
		base = base.Mul(base).Round(compoundPrecision)
		n >>= 1
	}
	return result
}
