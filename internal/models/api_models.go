package models

import "github.com/golang-jwt/jwt/v5"

// RunAcceptedResponse ответ на ручной запуск
type RunAcceptedResponse struct {
	Status  string `json:"status" example:"accepted"`
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

// BatchStatusResponse состояние хранилища и последнего запуска
type BatchStatusResponse struct {
	StatusSummary
	Running bool       `json:"running"`
	LastRun *RunResult `json:"lastRun,omitempty"`
}

// OperatorClaims claims токена оператора, которому разрешен запуск
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
