package csvreader

import (
	"fmt"
	"strings"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/shopspring/decimal"
)

// TimestampLayout формат даты во входном файле
const TimestampLayout = "2006-01-02T15:04:05"

// Позиции колонок во входном файле
const (
	colTransactionID = iota
	colAccountNumber
	colAmount
	colTransactionType
	colDescription
	colTimestamp
	colMerchantID
)

type Mapper struct {
	loc *time.Location
}

// NewMapper создает маппер; время во входном файле трактуется в зоне loc (nil означает time.Local)
func NewMapper(loc *time.Location) *Mapper {
	if loc == nil {
		loc = time.Local
	}
	return &Mapper{loc: loc}
}

// Map переводит строку в запись. Запись возвращается всегда: ошибка разбора поля
// сохраняется в MappingError, остальные поля продолжают заполняться.
// Возвращаемая ошибка описывает первое неразобранное поле.
func (m *Mapper) Map(row Row) (models.TransactionRecord, error) {
	const op = "csvreader.Map"

	rec := models.NewTransactionRecord()
	rec.Line = row.Line

	rec.TransactionID = field(row.Fields, colTransactionID)
	rec.AccountNumber = field(row.Fields, colAccountNumber)
	rec.TransactionType = models.TransactionType(field(row.Fields, colTransactionType))
	rec.Description = field(row.Fields, colDescription)
	rec.MerchantID = field(row.Fields, colMerchantID)

	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if raw := field(row.Fields, colAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			fail(fmt.Errorf("invalid amount %q", raw))
		} else {
			rec.Amount = decimal.NewNullDecimal(amount)
		}
	}

	if raw := field(row.Fields, colTimestamp); raw != "" {
		ts, err := time.ParseInLocation(TimestampLayout, raw, m.loc)
		if err != nil {
			fail(fmt.Errorf("invalid timestamp %q, expected format yyyy-MM-ddTHH:mm:ss", raw))
		} else {
			rec.Timestamp = &ts
		}
	}

	if firstErr != nil {
		rec.MappingError = "Parse error: " + firstErr.Error()
		return rec, fmt.Errorf("%s: %w: line %d: %v", op, custom_err.ErrParseFault, row.Line, firstErr)
	}

	return rec, nil
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
