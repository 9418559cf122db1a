package services

import "errors"

// Общие ошибки, используемые сервисами и маппингом HTTP.
var (
	ErrNotFound      = errors.New("requested resource not found")
	ErrMatchNotFound = errors.New("match not found")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")
	ErrTeamUnavailable  = errors.New("team is not available for this player")

	// Состояние турнира
	ErrSnapshotNotInitialized = errors.New("tournament has not been initialized")
	ErrAlreadyInitialized     = errors.New("tournament data already exists")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid password")
)
