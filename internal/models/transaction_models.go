package models

import (
	"time"

	"gw-transaction-batch/internal/custom_err"

	"github.com/shopspring/decimal"
)

// TransactionType тип финансовой операции
type TransactionType string

const (
	TransactionDebit      TransactionType = "DEBIT"
	TransactionCredit     TransactionType = "CREDIT"
	TransactionTransfer   TransactionType = "TRANSFER"
	TransactionPayment    TransactionType = "PAYMENT"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// IsValid проверяет, входит ли тип в фиксированный набор
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionDebit, TransactionCredit, TransactionTransfer,
		TransactionPayment, TransactionDeposit, TransactionWithdrawal:
		return true
	}
	return false
}

// SupportedTransactionTypes возвращает список поддерживаемых типов
func SupportedTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionDebit, TransactionCredit, TransactionTransfer,
		TransactionPayment, TransactionDeposit, TransactionWithdrawal,
	}
}

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusValid      TransactionStatus = "VALID"
	StatusInvalid    TransactionStatus = "INVALID"
	StatusFraudulent TransactionStatus = "FRAUDULENT"
)

// IsTerminal сообщает, что статус больше не меняется
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusValid || s == StatusInvalid || s == StatusFraudulent
}

// TransactionRecord представляет одну финансовую транзакцию из входного файла
type TransactionRecord struct {
	TransactionID   string              `json:"transaction_id"`
	AccountNumber   string              `json:"account_number"`
	Amount          decimal.NullDecimal `json:"amount"`
	TransactionType TransactionType     `json:"transaction_type"`
	Description     string              `json:"description,omitempty"`
	Timestamp       *time.Time          `json:"timestamp,omitempty"`
	MerchantID      string              `json:"merchant_id,omitempty"`
	Status          TransactionStatus   `json:"status"`
	FraudScore      *float64            `json:"fraud_score,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`

	// Duplicate отклонена как повтор уже сохраненного transaction_id
	Duplicate bool `json:"duplicate,omitempty"`

	// MappingError заполняется маппером, если какое-то поле не удалось разобрать
	MappingError string `json:"-"`
	// Line номер строки во входном файле
	Line int `json:"-"`
}

// NewTransactionRecord создает запись в статусе PENDING
func NewTransactionRecord() TransactionRecord {
	return TransactionRecord{Status: StatusPending}
}

func (r *TransactionRecord) HasMappingError() bool {
	return r.MappingError != ""
}

// Classification итог обработки одной записи
type Classification struct {
	Status    TransactionStatus
	Reason    string
	Score     *float64
	Duplicate bool
}

func Valid(score float64) Classification {
	return Classification{Status: StatusValid, Score: &score}
}

func Fraudulent(score float64) Classification {
	return Classification{Status: StatusFraudulent, Score: &score}
}

func Invalid(reason string) Classification {
	return Classification{Status: StatusInvalid, Reason: reason}
}

func DuplicateOf(reason string) Classification {
	return Classification{Status: StatusInvalid, Reason: reason, Duplicate: true}
}

// Apply переводит запись в терминальный статус. Статус назначается ровно один раз.
func (r *TransactionRecord) Apply(c Classification) error {
	if r.Status.IsTerminal() {
		return custom_err.ErrAlreadyClassified
	}
	if !c.Status.IsTerminal() {
		return custom_err.ErrInvalidStatus
	}
	if c.Status == StatusInvalid && c.Reason == "" {
		return custom_err.ErrMissingReason
	}

	r.Status = c.Status
	r.Duplicate = c.Duplicate
	if c.Reason != "" {
		r.ErrorMessage = c.Reason
	}
	if c.Status != StatusInvalid && c.Score != nil {
		score := *c.Score
		r.FraudScore = &score
	}
	return nil
}

// StatusSummary количество сохраненных транзакций по статусам
type StatusSummary struct {
	Valid          int64 `json:"valid"`
	Invalid        int64 `json:"invalid"`
	Fraudulent     int64 `json:"fraudulent"`
	Pending        int64 `json:"pending"`
	TotalProcessed int64 `json:"totalProcessed"`
}
