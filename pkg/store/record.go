package store

import (
	"fmt"

	"bankmatch/pkg/domain"
)

const dateFormat = "2006-01-02"

// Record is the flat ledger row every sink emits. AccountTo is empty for
// plain movements; for transfers the amount is always positive.
type Record struct {
	Date        string `json:"date"`
	AccountFrom string `json:"account_from"`
	AccountTo   string `json:"account_to,omitempty"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// NewRecord flattens a transaction into its ledger row.
func NewRecord(t domain.Transaction) Record {
	if transfer := t.Transfer; transfer != nil {
		return Record{
			Date:        transfer.Date.Format(dateFormat),
			AccountFrom: transfer.From.Display(),
			AccountTo:   transfer.To.Display(),
			Amount:      transfer.Amount.String(),
			Currency:    transfer.Currency,
			Description: fmt.Sprintf("from: %s to: %s", transfer.FromAdditionalInfo, transfer.ToAdditionalInfo),
		}
	}

	normal := t.Normal
	return Record{
		Date:        normal.Date.Format(dateFormat),
		AccountFrom: normal.Account.Display(),
		Amount:      normal.Amount.String(),
		Currency:    normal.Currency,
		Description: normal.AdditionalInfo,
	}
}

func records(txns []domain.Transaction) []Record {
	out := make([]Record, 0, len(txns))
	for _, t := range txns {
		out = append(out, NewRecord(t))
	}
	return out
}
