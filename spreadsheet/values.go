package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"02/01/2006",
}

// excelEpoch нулевой день в системе дат Excel 1900 с учетом ошибки 29.02.1900
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial соответствует 31.12.9999
const maxExcelSerial = 2958465

// ParseDecimal разбирает денежное значение. Пустая ячейка означает 0.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// ParseInt разбирает целое значение, допуская запись вида "12.0". Пустая ячейка означает 0.
func ParseInt(s string) (int, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(d.IntPart()), nil
}

// ParseID разбирает положительный идентификатор
func ParseID(s string) (uint, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

// ParsePhone возвращает номер телефона. Числовые ячейки
// (например, 9.629317944E9) записываются целым числом.
func ParsePhone(s string) string {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
		return d.String()
	}
	return s
}

// ParseDate разбирает дату в формате YYYY-MM-DD, DD/MM/YYYY или
// порядковый номер дня Excel. Нераспознанное значение дает nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	serial, err := decimal.NewFromString(s)
	if err != nil || serial.LessThan(decimal.NewFromInt(1)) || serial.GreaterThan(decimal.NewFromInt(maxExcelSerial)) {
		return nil
	}
	d := excelEpoch.AddDate(0, 0, int(serial.IntPart()))
	return &d
}
