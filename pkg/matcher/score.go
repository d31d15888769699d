package matcher

import (
	"sort"
	"time"

	"bankmatch/pkg/domain"
)

// closeWindow bounds how far apart the two legs of a transfer may book.
// Settlement posts asynchronously across institutions, so the legs commonly
// differ by a few calendar days. The window is open on both sides.
const closeWindow = 5 * 24 * time.Hour

// Candidate is an eligible counterparty for a target, with its index into
// the tail it was drawn from and its date-offset score.
type Candidate struct {
	Transaction *domain.Normal
	Index       int
	Score       time.Duration
}

// findCandidates returns every Normal in tail that could be the other leg of
// a transfer with target, sorted by score ascending.
func findCandidates(target *domain.Normal, tail []domain.Transaction) []Candidate {
	var scored []Candidate

	for i, t := range tail {
		candidate := t.Normal
		if candidate == nil {
			continue
		}
		score, ok := evaluate(target, candidate)
		if !ok {
			continue
		}
		scored = append(scored, Candidate{Transaction: candidate, Index: i, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score < scored[j].Score })

	return scored
}

// evaluate applies the hard pairing predicate: different accounts, identical
// currency, amounts summing to exactly zero. The score is the signed
// calendar-day difference target minus candidate.
func evaluate(target, candidate *domain.Normal) (time.Duration, bool) {
	if target.Account.ID == candidate.Account.ID {
		return 0, false
	}
	if target.Currency != candidate.Currency {
		return 0, false
	}
	if !target.Amount.Add(candidate.Amount).IsZero() {
		return 0, false
	}
	return target.Date.Sub(candidate.Date), true
}

type outcome int

const (
	noMatch outcome = iota
	obviousChoice
	needsHuman
)

type match struct {
	outcome    outcome
	chosen     Candidate   // set for obviousChoice
	candidates []Candidate // set for needsHuman, score ascending
}

// pickMatch applies the tie-break policy. A single same-day candidate wins
// outright; two or more same-day candidates, or any candidates strictly
// inside the close window, are handed to a human.
func pickMatch(scored []Candidate) match {
	var perfect []Candidate
	for _, c := range scored {
		if c.Score == 0 {
			perfect = append(perfect, c)
		}
	}

	if len(perfect) == 1 {
		return match{outcome: obviousChoice, chosen: perfect[0]}
	}
	if len(perfect) > 1 {
		return match{outcome: needsHuman, candidates: perfect}
	}

	var closeBy []Candidate
	for _, c := range scored {
		if -closeWindow < c.Score && c.Score < closeWindow {
			closeBy = append(closeBy, c)
		}
	}

	if len(closeBy) == 0 {
		return match{outcome: noMatch}
	}
	return match{outcome: needsHuman, candidates: closeBy}
}

// fuse collapses a target and its chosen partner into a Transfer. The leg
// with the negative amount is the sending side; a zero-amount target is
// treated as the receiving side.
func fuse(target, partner *domain.Normal) *domain.Transfer {
	from, to := partner, target
	if target.Amount.IsNegative() {
		from, to = target, partner
	}

	return &domain.Transfer{
		From:               from.Account,
		To:                 to.Account,
		Amount:             from.Amount.Abs(),
		Currency:           from.Currency,
		Date:               from.Date,
		FromAdditionalInfo: from.AdditionalInfo,
		ToAdditionalInfo:   to.AdditionalInfo,
	}
}
