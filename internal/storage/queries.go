package storage

const TransactionsTable = "financial_transactions"

// Колонки для COPY, порядок совпадает с transactionCopyRow
var TransactionCopyColumns = []string{
	"transaction_id",
	"account_number",
	"amount",
	"transaction_type",
	"description",
	"timestamp",
	"merchant_id",
	"status",
	"fraud_score",
	"error_message",
	"run_id",
	"duplicate",
}

const (
	// Проверка дубликата по бизнес-ключу
	ExistsByTransactionIDQuery = `
		SELECT EXISTS(
			SELECT 1
			FROM financial_transactions
			WHERE transaction_id = $1 AND NOT duplicate
		)
	`

	CountByStatusQuery = `
		SELECT COUNT(*)
		FROM financial_transactions
		WHERE status = $1
	`

	// Сумма возвращается текстом, чтобы не терять точность NUMERIC
	SumAmountByStatusQuery = `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM financial_transactions
		WHERE status = $1
	`

	FindByStatusQuery = `
		SELECT COALESCE(transaction_id, ''),
		       COALESCE(account_number, ''),
		       COALESCE(amount::text, ''),
		       COALESCE(transaction_type, ''),
		       COALESCE(description, ''),
		       timestamp,
		       COALESCE(merchant_id, ''),
		       status,
		       fraud_score,
		       COALESCE(error_message, '')
		FROM financial_transactions
		WHERE status = $1
		ORDER BY id
		LIMIT $2
	`

	StatusSummaryQuery = `
		SELECT status, COUNT(*)
		FROM financial_transactions
		GROUP BY status
	`
)
