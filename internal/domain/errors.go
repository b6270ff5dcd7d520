package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrEmptyInput           = errors.New("import text is empty")
	ErrInputTooLarge        = errors.New("import text exceeds maximum allowed size")
	ErrUnparseableInput     = errors.New("import text could not be parsed")
	ErrNoDimensions         = errors.New("no dimensions container found")
	ErrTargetsRequired      = errors.New("territory and dossier identifiers are required")
	ErrValidationFailed     = errors.New("dossier failed validation")
	ErrPersistFailed        = errors.New("dossier could not be persisted")
	ErrArchiveFailed        = errors.New("raw import upload to storage failed")
	ErrAssistantUnavailable = errors.New("research assistant unavailable")
)
