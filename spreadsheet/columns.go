package spreadsheet

import (
	"strings"
	"unicode"
)

// Field описывает колонку: ключ, допустимые заголовки и позицию по умолчанию
type Field struct {
	Key      string
	Aliases  []string
	Position int
}

// Record строка данных с доступом к ячейкам по ключу колонки
type Record struct {
	// Line номер строки в файле, начиная с 1 (строка 1 это заголовок)
	Line  int
	cells []string
	cols  map[string]int
}

// Get возвращает значение ячейки без пробелов по краям или пустую строку
func (r Record) Get(key string) string {
	idx, ok := r.cols[key]
	if !ok || idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// Locate сопоставляет поля с колонками.
// Поле ищется по заголовку без учета регистра, пробелов и знаков препинания.
// Если ни один заголовок не распознан, используются позиции по умолчанию.
// Если распознана часть заголовков, остальные поля занимают свои позиции,
// когда эти колонки не заняты другими полями.
func (s *Sheet) Locate(fields []Field) map[string]int {
	byName := make(map[string]int, len(s.Header))
	for i, h := range s.Header {
		name := normalize(h)
		if _, dup := byName[name]; name != "" && !dup {
			byName[name] = i
		}
	}

	cols := make(map[string]int, len(fields))
	used := make(map[int]bool)
	for _, f := range fields {
		for _, alias := range append([]string{f.Key}, f.Aliases...) {
			if idx, ok := byName[normalize(alias)]; ok {
				cols[f.Key] = idx
				used[idx] = true
				break
			}
		}
	}

	if len(cols) == 0 {
		for _, f := range fields {
			cols[f.Key] = f.Position
		}
		return cols
	}

	for _, f := range fields {
		if _, ok := cols[f.Key]; ok {
			continue
		}
		if f.Position >= 0 && !used[f.Position] {
			cols[f.Key] = f.Position
			used[f.Position] = true
		}
	}
	return cols
}

// Records возвращает непустые строки данных
func (s *Sheet) Records(fields []Field) []Record {
	cols := s.Locate(fields)

	records := make([]Record, 0, len(s.Rows))
	for i, row := range s.Rows {
		if blank(row) {
			continue
		}
		records = append(records, Record{Line: i + 2, cells: row, cols: cols})
	}
	return records
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
