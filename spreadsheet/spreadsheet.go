// Package spreadsheet читает табличные файлы с клиентами и кредитами.
//
// Поддерживаются .xlsx (excelize), .xml в формате SpreadsheetML 2003 (etree)
// и .csv. Все ячейки возвращаются строками, разбор значений выполняют
// функции из values.go.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat возвращается для файла с неизвестным расширением
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Sheet содержит строку заголовка и строки данных первого листа
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Reader разбирает файл одного формата
type Reader interface {
	Read(r io.Reader) (*Sheet, error)
	Extension() string
}

// Registry хранит читателей по расширению файла
type Registry struct {
	readers map[string]Reader
}

// NewRegistry создает пустой реестр
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register добавляет читателя. Повторная регистрация расширения приводит к панике.
func (r *Registry) Register(reader Reader) {
	key := strings.ToLower(reader.Extension())
	if _, ok := r.readers[key]; ok {
		panic("duplicate spreadsheet reader: " + key)
	}
	r.readers[key] = reader
}

// Get возвращает читателя для расширения или nil
func (r *Registry) Get(ext string) Reader {
	return r.readers[strings.ToLower(ext)]
}

// DefaultRegistry возвращает реестр со всеми встроенными читателями
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXReader{})
	r.Register(&XMLReader{})
	r.Register(&CSVReader{})
	return r
}

// Open читает файл, выбирая формат по расширению.
// Ошибка отсутствующего файла проверяется через errors.Is(err, fs.ErrNotExist).
func (r *Registry) Open(path string) (*Sheet, error) {
	ext := filepath.Ext(path)
	reader := r.Get(ext)
	if reader == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := reader.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return sheet, nil
}

// newSheet отделяет заголовок от данных
func newSheet(rows [][]string) *Sheet {
	if len(rows) == 0 {
		return &Sheet{}
	}
	return &Sheet{Header: rows[0], Rows: rows[1:]}
}
