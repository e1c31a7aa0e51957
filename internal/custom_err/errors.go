package custom_err

import "errors"

var (
	// Pipeline errors
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrParseFault        = errors.New("parse fault")
	ErrProcessingFault   = errors.New("processing fault")
	ErrCommitFailure     = errors.New("chunk commit failed")
	ErrBudgetExceeded    = errors.New("skip limit exceeded")

	// Record lifecycle errors
	ErrAlreadyClassified = errors.New("record already classified")
	ErrInvalidStatus     = errors.New("invalid terminal status")
	ErrMissingReason     = errors.New("invalid classification requires a reason")

	// Storage errors
	ErrNotFound             = errors.New("resource not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// Run errors
	ErrRunInProgress = errors.New("batch run already in progress")

	// Auth errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenNotActive = errors.New("token not active yet")

	// Config errors
	ErrInvalidConfig = errors.New("invalid configuration")
)
