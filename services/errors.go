package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed") // Общая ошибка валидации
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrMemberNameRequired    = errors.New("member name is required")
	ErrClubNameRequired      = errors.New("club name is required")
	ErrTournamentNameMissing = errors.New("tournament name is required")
	ErrInvalidScore          = errors.New("scores must be non-negative integers")

	// Ошибки сетки и хода турнира
	ErrBracketConfigInvalid   = errors.New("bracket configuration is invalid")
	ErrNotEnoughParticipants  = errors.New("at least two participants are required to generate a bracket")
	ErrGameSlotsIncomplete    = errors.New("both player slots must be filled before recording a result")
	ErrDrawNotAllowed         = errors.New("draws are not allowed in elimination games")
	ErrTournamentNotFinished  = errors.New("tournament is not finished yet, results are not final")
	ErrUnknownEliminationType = errors.New("unknown elimination type")
	ErrUnknownSeedingType     = errors.New("unknown seeding type")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrClubNameConflict       = errors.New("club name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRegistrationConflict   = errors.New("member is already registered for this tournament")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (дублируют ErrNotFound, но дают больше контекста)
	ErrUserNotFound       = errors.New("user not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGameNotFound       = errors.New("game not found")
)
