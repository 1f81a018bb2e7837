package services

import (
	"errors"
	"fmt"

	"creditapproval/database"
)

// ErrIngestionInProgress возвращается, если импорт уже выполняется
var ErrIngestionInProgress = errors.New("ingestion is already in progress")

// NotFoundError сообщает об отсутствии клиента или кредита
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found.", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return database.ErrNotFound
}

// notFound заменяет database.ErrNotFound на NotFoundError, остальные ошибки возвращает как есть
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, database.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
