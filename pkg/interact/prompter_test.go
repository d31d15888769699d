package interact

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bankmatch/pkg/domain"
	"bankmatch/pkg/matcher"
)

func TestFormatCandidate(t *testing.T) {
	candidate := matcher.Candidate{
		Transaction: &domain.Normal{
			Account:        &domain.Account{ID: "acc-1", Name: "Savings"},
			Amount:         decimal.RequireFromString("100.00"),
			Currency:       "EUR",
			Date:           domain.Date(2024, 3, 3),
			AdditionalInfo: "b",
		},
		Score: -2 * 24 * time.Hour,
	}

	assert.Equal(t, "[-2d] 2024-03-03 to: Savings 100.00 EUR b", formatCandidate(candidate))
}
