package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails возвращает копию ошибки с деталями.
// Копия нужна, чтобы не портить предопределенные переменные.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Is сравнивает AppError по коду и домену, чтобы errors.Is работал
// и для копий, созданных через WithDetails/WithError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Domain == t.Domain
}

// MarshalJSON - для кастомного вывода JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// =========================================================================
// Фабрики
// =========================================================================

// InternalError оборачивает неизвестную системную ошибку
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)
}

// DatabaseError - ошибка базы данных (транзакция откатывается выше)
func DatabaseError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "database", "Database operation failed", http.StatusInternalServerError)
}

// StorageError - ошибка объектного хранилища
func StorageError(err error, message string) *AppError {
	return Wrap(err, CodeStorageError, "storage", message, http.StatusInternalServerError)
}

// ErrNotFound - фабрика для ошибки "не найдено". Отдается как 210 "No Content".
func ErrNotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, StatusNotFoundSoft)
}

// ValidationError создает ошибку валидации с деталями (поле -> сообщение)
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusUnprocessableEntity).WithDetails(details)
}

// FieldError - ошибка валидации одного поля
func FieldError(field, message string) *AppError {
	return ValidationError(map[string]string{field: message})
}

// EmptySelection - массовая операция без идентификаторов (422)
func EmptySelection(message string) *AppError {
	return New(CodeEmptySelection, "selection", message, http.StatusUnprocessableEntity)
}

// NewUnauthorizedError создает ошибку авторизации
func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, "auth", message, http.StatusUnauthorized)
}

// NewBadRequestError - некорректный запрос (не удалось разобрать тело/параметры)
func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message, http.StatusUnprocessableEntity)
}

// =========================================================================
// Предопределенные ошибки домена
// =========================================================================

var (
	ErrFolderNotFound = ErrNotFound("folder", "Folder not found")
	ErrFileNotFound   = ErrNotFound("file", "File not found")
	ErrObjectNotFound = ErrNotFound("storage", "File not found in storage")
	ErrTagNotFound    = ErrNotFound("tag", "Tag not found")
	ErrTaskNotFound   = ErrNotFound("task", "Task not found")

	// ErrEmptySelection - массовая операция без идентификаторов
	ErrEmptySelection = EmptySelection("Please select at least one item")

	ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)
)
