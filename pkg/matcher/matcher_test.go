package matcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmatch/pkg/domain"
)

type pickFirst struct {
	calls    int
	lastSeen []Candidate
}

func (p *pickFirst) Pick(_ *domain.Normal, candidates []Candidate) (*Candidate, error) {
	p.calls++
	p.lastSeen = candidates
	return &candidates[0], nil
}

type pickAt struct {
	index int
	calls int
}

func (p *pickAt) Pick(_ *domain.Normal, candidates []Candidate) (*Candidate, error) {
	p.calls++
	return &candidates[p.index], nil
}

type countingDecline struct {
	calls int
}

func (d *countingDecline) Pick(*domain.Normal, []Candidate) (*Candidate, error) {
	d.calls++
	return nil, nil
}

type failingOracle struct{}

func (failingOracle) Pick(*domain.Normal, []Candidate) (*Candidate, error) {
	return nil, fmt.Errorf("prompt aborted")
}

func account(id string) *domain.Account {
	return &domain.Account{ID: id}
}

func normal(acc *domain.Account, date time.Time, currency, amount, info string) domain.Transaction {
	return domain.Transaction{Normal: &domain.Normal{
		Account:        acc,
		Amount:         decimal.RequireFromString(amount),
		Currency:       currency,
		Date:           date,
		AdditionalInfo: info,
	}}
}

func TestObviousMatch(t *testing.T) {
	a1, a2 := account("A1"), account("A2")
	oracle := &countingDecline{}

	out := Match([]domain.Transaction{
		normal(a1, domain.Date(2024, 1, 10), "EUR", "-50.00", "rent out"),
		normal(a2, domain.Date(2024, 1, 10), "EUR", "50.00", "rent in"),
	}, oracle)

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Transfer)
	transfer := out[0].Transfer

	assert.Equal(t, "A1", transfer.From.ID)
	assert.Equal(t, "A2", transfer.To.ID)
	assert.True(t, transfer.Amount.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "EUR", transfer.Currency)
	assert.Equal(t, domain.Date(2024, 1, 10), transfer.Date)
	assert.Equal(t, "rent out", transfer.FromAdditionalInfo)
	assert.Equal(t, "rent in", transfer.ToAdditionalInfo)

	// an unambiguous same-day pair never prompts
	assert.Zero(t, oracle.calls)
}

func TestAmountMismatch(t *testing.T) {
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 2, 1), "EUR", "-50.00", "x"),
		normal(account("A2"), domain.Date(2024, 2, 1), "EUR", "49.99", "y"),
	}, DeclineAll{})

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Normal)
	assert.NotNil(t, out[1].Normal)
	assert.Equal(t, "x", out[0].Normal.AdditionalInfo)
	assert.Equal(t, "y", out[1].Normal.AdditionalInfo)
}

func TestCloseCandidatePrompts(t *testing.T) {
	a1, a2 := account("A1"), account("A2")
	input := func() []domain.Transaction {
		return []domain.Transaction{
			normal(a1, domain.Date(2024, 3, 1), "EUR", "-100.00", "a"),
			normal(a2, domain.Date(2024, 3, 3), "EUR", "100.00", "b"),
		}
	}

	oracle := &pickFirst{}
	out := Match(input(), oracle)

	assert.Equal(t, 1, oracle.calls)
	require.Len(t, oracle.lastSeen, 1)
	assert.Equal(t, -2*24*time.Hour, oracle.lastSeen[0].Score)

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Transfer)
	assert.Equal(t, domain.Date(2024, 3, 1), out[0].Transfer.Date)

	// declining leaves both untouched
	declined := Match(input(), DeclineAll{})
	require.Len(t, declined, 2)
	assert.NotNil(t, declined[0].Normal)
	assert.NotNil(t, declined[1].Normal)
}

func TestTwoPerfectCandidatesNeedHuman(t *testing.T) {
	a1, a2, a3 := account("A1"), account("A2"), account("A3")
	input := func() []domain.Transaction {
		return []domain.Transaction{
			normal(a1, domain.Date(2024, 4, 1), "EUR", "-20.00", "t"),
			normal(a2, domain.Date(2024, 4, 1), "EUR", "20.00", "x"),
			normal(a3, domain.Date(2024, 4, 1), "EUR", "20.00", "y"),
		}
	}

	first := &pickFirst{}
	out := Match(input(), first)
	assert.Equal(t, 1, first.calls)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Transfer)
	assert.Equal(t, "A2", out[0].Transfer.To.ID)
	require.NotNil(t, out[1].Normal)
	assert.Equal(t, "A3", out[1].Normal.Account.ID)

	second := &pickAt{index: 1}
	out = Match(input(), second)
	assert.Equal(t, 1, second.calls)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Transfer)
	assert.Equal(t, "A3", out[0].Transfer.To.ID)
	require.NotNil(t, out[1].Normal)
	assert.Equal(t, "A2", out[1].Normal.Account.ID)
}

func TestWindowBoundaryIsOpen(t *testing.T) {
	oracle := &countingDecline{}
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 5, 1), "EUR", "-10.00", ""),
		normal(account("A2"), domain.Date(2024, 5, 6), "EUR", "10.00", ""),
	}, oracle)

	// exactly 5 days apart: not even worth asking
	assert.Zero(t, oracle.calls)
	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Normal)
	assert.NotNil(t, out[1].Normal)
}

func TestJustInsideWindowPrompts(t *testing.T) {
	oracle := &countingDecline{}
	Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 5, 1), "EUR", "-10.00", ""),
		normal(account("A2"), domain.Date(2024, 5, 5), "EUR", "10.00", ""),
	}, oracle)

	assert.Equal(t, 1, oracle.calls)
}

func TestCurrencyBarrier(t *testing.T) {
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 6, 1), "EUR", "-10.00", ""),
		normal(account("A2"), domain.Date(2024, 6, 1), "USD", "10.00", ""),
	}, DeclineAll{})

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Normal)
	assert.NotNil(t, out[1].Normal)
}

func TestSameAccountNeverMatches(t *testing.T) {
	a1 := account("A1")
	out := Match([]domain.Transaction{
		normal(a1, domain.Date(2024, 6, 1), "EUR", "-10.00", ""),
		normal(a1, domain.Date(2024, 6, 1), "EUR", "10.00", ""),
	}, DeclineAll{})

	require.Len(t, out, 2)
}

func TestCreditTargetSwapsDirection(t *testing.T) {
	// the credit leg comes first: the transfer must still point A2 -> A1
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 7, 1), "EUR", "30.00", "in"),
		normal(account("A2"), domain.Date(2024, 7, 1), "EUR", "-30.00", "out"),
	}, DeclineAll{})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Transfer)
	transfer := out[0].Transfer
	assert.Equal(t, "A2", transfer.From.ID)
	assert.Equal(t, "A1", transfer.To.ID)
	assert.Equal(t, "out", transfer.FromAdditionalInfo)
	assert.Equal(t, "in", transfer.ToAdditionalInfo)
	assert.Equal(t, domain.Date(2024, 7, 1), transfer.Date)
	assert.True(t, transfer.Amount.IsPositive())
}

func TestDateDominanceOfDebitLeg(t *testing.T) {
	oracle := &pickFirst{}
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 8, 3), "EUR", "40.00", "in"),
		normal(account("A2"), domain.Date(2024, 8, 1), "EUR", "-40.00", "out"),
	}, oracle)

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Transfer)
	assert.Equal(t, domain.Date(2024, 8, 1), out[0].Transfer.Date)
}

func TestOracleErrorIsDecline(t *testing.T) {
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 3, 1), "EUR", "-100.00", "a"),
		normal(account("A2"), domain.Date(2024, 3, 3), "EUR", "100.00", "b"),
	}, failingOracle{})

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Normal)
	assert.NotNil(t, out[1].Normal)
}

func TestCandidatesPresentedSortedByScore(t *testing.T) {
	first := &pickFirst{}

	// candidates at +3, -1 and +2 days, none perfect
	input := []domain.Transaction{
		normal(account("A1"), domain.Date(2024, 9, 10), "EUR", "-15.00", "t"),
		normal(account("A2"), domain.Date(2024, 9, 7), "EUR", "15.00", "late"),
		normal(account("A3"), domain.Date(2024, 9, 11), "EUR", "15.00", "early"),
		normal(account("A4"), domain.Date(2024, 9, 8), "EUR", "15.00", "mid"),
	}
	Match(input, first)

	require.Len(t, first.lastSeen, 3)
	scores := []time.Duration{}
	for _, c := range first.lastSeen {
		scores = append(scores, c.Score)
	}
	assert.Equal(t, []time.Duration{
		-1 * 24 * time.Hour,
		2 * 24 * time.Hour,
		3 * 24 * time.Hour,
	}, scores)
}

func TestZeroAmountPassesThrough(t *testing.T) {
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 10, 1), "EUR", "0.00", "zero a"),
		normal(account("A2"), domain.Date(2024, 10, 5), "EUR", "12.00", "b"),
	}, DeclineAll{})

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Normal)
	assert.True(t, out[0].Normal.Amount.IsZero())
}

func TestConservation(t *testing.T) {
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 1, 2), "EUR", "-50.00", ""),
		normal(account("A2"), domain.Date(2024, 1, 2), "EUR", "50.00", ""),
		normal(account("A1"), domain.Date(2024, 1, 3), "EUR", "-8.20", "groceries"),
		normal(account("A3"), domain.Date(2024, 1, 4), "SEK", "-200.00", ""),
		normal(account("A2"), domain.Date(2024, 1, 4), "SEK", "200.00", ""),
	}, DeclineAll{})

	normals, transfers := 0, 0
	for _, tx := range out {
		switch {
		case tx.Normal != nil:
			normals++
		case tx.Transfer != nil:
			transfers++
		}
	}

	// 5 normals in, 2 pairs fused: 1 normal + 2 transfers out
	assert.Equal(t, 1, normals)
	assert.Equal(t, 2, transfers)
	for _, tx := range out {
		if tx.Transfer != nil {
			assert.NotEqual(t, tx.Transfer.From.ID, tx.Transfer.To.ID)
		}
	}
}

func TestSecondPassIsIdempotent(t *testing.T) {
	once := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 1, 10), "EUR", "-50.00", "out"),
		normal(account("A2"), domain.Date(2024, 1, 10), "EUR", "50.00", "in"),
		normal(account("A3"), domain.Date(2024, 1, 11), "EUR", "-7.00", "coffee"),
	}, DeclineAll{})

	oracle := &countingDecline{}
	twice := Match(append([]domain.Transaction{}, once...), oracle)

	assert.Equal(t, once, twice)
	assert.Zero(t, oracle.calls)
}

func TestFirstTargetClaimsItsMatch(t *testing.T) {
	// A1's debit pairs with A2's credit; the later A3 debit is left alone
	// even though it would also pair with A2.
	out := Match([]domain.Transaction{
		normal(account("A1"), domain.Date(2024, 2, 1), "EUR", "-25.00", ""),
		normal(account("A2"), domain.Date(2024, 2, 1), "EUR", "25.00", ""),
		normal(account("A3"), domain.Date(2024, 2, 1), "EUR", "-25.00", ""),
	}, DeclineAll{})

	require.Len(t, out, 2)
	require.NotNil(t, out[0].Transfer)
	assert.Equal(t, "A1", out[0].Transfer.From.ID)
	require.NotNil(t, out[1].Normal)
	assert.Equal(t, "A3", out[1].Normal.Account.ID)
}

func TestClassify(t *testing.T) {
	acc := account("A1")
	raw := &domain.RawTransaction{
		ID:             "tx-1",
		AccountID:      "A1",
		Date:           domain.Date(2024, 1, 1),
		Currency:       "EUR",
		Amount:         decimal.RequireFromString("-3.50"),
		AdditionalInfo: "bus ticket",
	}

	n := Classify(raw, acc)

	assert.Same(t, acc, n.Account)
	assert.Equal(t, "EUR", n.Currency)
	assert.Equal(t, "bus ticket", n.AdditionalInfo)
	assert.True(t, n.Amount.Equal(decimal.RequireFromString("-3.50")))
	assert.Equal(t, domain.Date(2024, 1, 1), n.Date)
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, Match(nil, DeclineAll{}))
}
