// Package matcher reconstructs inter-account transfers from a flat list of
// single-account movements. Two Normals on different accounts with the same
// currency and amounts summing to exactly zero form a transfer; ambiguous
// pairings are settled by an Oracle.
package matcher

import (
	"fmt"

	"bankmatch/pkg/domain"
)

// Oracle picks at most one candidate as the other half of a transfer. A nil
// candidate means the user skipped. Implementations must not reorder or
// filter the presented list.
type Oracle interface {
	Pick(target *domain.Normal, candidates []Candidate) (*Candidate, error)
}

// DeclineAll is the oracle for non-interactive runs: every ambiguous pairing
// is left unmatched.
type DeclineAll struct{}

func (DeclineAll) Pick(*domain.Normal, []Candidate) (*Candidate, error) {
	return nil, nil
}

// check it meets the interface
var _ Oracle = DeclineAll{}

// Classify binds a raw transaction to its owning account.
func Classify(raw *domain.RawTransaction, account *domain.Account) *domain.Normal {
	return &domain.Normal{
		Account:        account,
		Amount:         raw.Amount,
		Currency:       raw.Currency,
		Date:           raw.Date,
		AdditionalInfo: raw.AdditionalInfo,
	}
}

// Match scans the working list once, front to back. Each Normal claims at
// most one later partner; a claimed pair is collapsed into a Transfer at the
// target's position and the partner is removed. The list is modified in
// place and the (possibly shortened) list is returned.
//
// Oracle errors count as the user declining; the scan never fails.
func Match(transactions []domain.Transaction, oracle Oracle) []domain.Transaction {
	index := 0

	for index < len(transactions) {
		if transactions[index].Transfer != nil {
			index++
			continue
		}

		target := transactions[index].Normal
		if target == nil {
			panic(fmt.Sprintf("transaction at %d is neither normal nor transfer", index))
		}

		tail := transactions[index+1:]
		picked := resolve(pickMatch(findCandidates(target, tail)), target, oracle)
		if picked == nil {
			index++
			continue
		}

		transactions[index] = domain.Transaction{Transfer: fuse(target, picked.Transaction)}

		cut := index + 1 + picked.Index
		transactions = append(transactions[:cut], transactions[cut+1:]...)

		index++
	}

	return transactions
}

func resolve(m match, target *domain.Normal, oracle Oracle) *Candidate {
	switch m.outcome {
	case obviousChoice:
		chosen := m.chosen
		return &chosen
	case needsHuman:
		picked, err := oracle.Pick(target, m.candidates)
		if err != nil {
			// a failed or aborted prompt is a missed opportunity, not a fault
			return nil
		}
		return picked
	default:
		return nil
	}
}
