package service

import (
	"regexp"
	"strings"
	"time"

	"gw-transaction-batch/internal/models"

	"github.com/shopspring/decimal"
)

var accountNumberPattern = regexp.MustCompile(`^ACC\d{3,10}$`)

var maxTransactionAmount = decimal.NewFromInt(1_000_000)

type RecordValidator interface {
	Validate(rec models.TransactionRecord) (bool, string)
}

// Validator проверяет структурные и бизнес-правила записи без обращения к хранилищу
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate собирает все нарушенные правила в одно сообщение
func (v *Validator) Validate(rec models.TransactionRecord) (bool, string) {
	var errs strings.Builder

	if strings.TrimSpace(rec.TransactionID) == "" {
		errs.WriteString("Transaction ID is required. ")
	}

	if strings.TrimSpace(rec.AccountNumber) == "" {
		errs.WriteString("Account number is required. ")
	}

	if !rec.Amount.Valid || !rec.Amount.Decimal.IsPositive() {
		errs.WriteString("Amount must be positive. ")
	}

	if !rec.TransactionType.IsValid() {
		errs.WriteString("Invalid transaction type: " + string(rec.TransactionType) + ". ")
	}

	if rec.Timestamp == nil {
		errs.WriteString("Timestamp is required. ")
	} else if rec.Timestamp.After(v.now()) {
		errs.WriteString("Future-dated transactions not allowed. ")
	}

	if rec.Amount.Valid && rec.Amount.Decimal.GreaterThan(maxTransactionAmount) {
		errs.WriteString("Transaction amount exceeds maximum limit. ")
	}

	if !accountNumberPattern.MatchString(rec.AccountNumber) {
		errs.WriteString("Invalid account number format. ")
	}

	if errs.Len() > 0 {
		return false, strings.TrimSpace(errs.String())
	}
	return true, ""
}
