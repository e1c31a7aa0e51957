package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gw-transaction-batch/internal/models"

	"github.com/shopspring/decimal"
)

type RiskScorer interface {
	Score(rec models.TransactionRecord) float64
}

// Баллы факторов в сотых долях, сумма считается в целых числах
const (
	pointsHighAmount    = 30
	pointsWeekend       = 10
	pointsNightHours    = 20
	pointsRiskyMerchant = 15
	pointsRoundAmount   = 5
	pointsLargeTransfer = 10
	maxFraudPoints      = 100
	fraudPointsPerWhole = 100.0
)

var (
	hundred              = decimal.NewFromInt(100)
	largeTransferAmount  = decimal.NewFromInt(5000)
	riskyMerchantMarkers = []string{"CASH", "ATM", "UNKNOWN"}
)

type fraudRule struct {
	name          string
	points        int
	needAmount    bool
	needTimestamp bool
	match         func(rec models.TransactionRecord) bool
}

// FraudScorer эвристическая аддитивная оценка риска в диапазоне [0, 1]
type FraudScorer struct {
	rules []fraudRule
	log   *slog.Logger
}

func NewFraudScorer(threshold decimal.Decimal, log *slog.Logger) *FraudScorer {
	return &FraudScorer{
		log: log,
		rules: []fraudRule{
			{name: "high_amount", points: pointsHighAmount, needAmount: true, match: func(r models.TransactionRecord) bool {
				return r.Amount.Decimal.GreaterThan(threshold)
			}},
			{name: "weekend", points: pointsWeekend, needTimestamp: true, match: func(r models.TransactionRecord) bool {
				wd := r.Timestamp.Weekday()
				return wd == time.Saturday || wd == time.Sunday
			}},
			{name: "night_hours", points: pointsNightHours, needTimestamp: true, match: func(r models.TransactionRecord) bool {
				h := r.Timestamp.Hour()
				return h >= 23 || h <= 6
			}},
			{name: "risky_merchant", points: pointsRiskyMerchant, match: func(r models.TransactionRecord) bool {
				merchant := strings.ToUpper(r.MerchantID)
				for _, marker := range riskyMerchantMarkers {
					if strings.Contains(merchant, marker) {
						return true
					}
				}
				return false
			}},
			{name: "round_amount", points: pointsRoundAmount, needAmount: true, match: func(r models.TransactionRecord) bool {
				return r.Amount.Decimal.Mod(hundred).IsZero()
			}},
			{name: "large_transfer", points: pointsLargeTransfer, needAmount: true, match: func(r models.TransactionRecord) bool {
				return r.TransactionType == models.TransactionTransfer && r.Amount.Decimal.GreaterThan(largeTransferAmount)
			}},
		},
	}
}

// Score никогда не паникует: фактор, который не удалось вычислить, дает ноль
func (s *FraudScorer) Score(rec models.TransactionRecord) float64 {
	total := 0
	for _, rule := range s.rules {
		hit, err := s.apply(rule, rec)
		if err != nil {
			s.log.Warn("fraud rule evaluation failed",
				slog.String("transaction_id", rec.TransactionID),
				slog.String("rule", rule.name),
				slog.String("error", err.Error()))
			continue
		}
		if hit {
			total += rule.points
		}
	}

	return float64(min(total, maxFraudPoints)) / fraudPointsPerWhole
}

func (s *FraudScorer) apply(rule fraudRule, rec models.TransactionRecord) (hit bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			hit, err = false, fmt.Errorf("rule %s panicked: %v", rule.name, p)
		}
	}()

	if rule.needAmount && !rec.Amount.Valid {
		return false, fmt.Errorf("rule %s: amount is missing", rule.name)
	}
	if rule.needTimestamp && rec.Timestamp == nil {
		return false, fmt.Errorf("rule %s: timestamp is missing", rule.name)
	}
	return rule.match(rec), nil
}
