package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

// RawTransaction is a booked transaction as the bank reports it, before it
// is bound to its owning account.
type RawTransaction struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Date           time.Time       `json:"date"`
	Currency       string          `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	AdditionalInfo string          `json:"additional_info"`
}

// Normal is an atomic movement on a single account. Negative amounts are
// debits, positive amounts credits.
type Normal struct {
	Account        *Account        `json:"account"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Date           time.Time       `json:"date"`
	AdditionalInfo string          `json:"additional_info"`
}

func (n *Normal) String() string {
	if n.Amount.IsNegative() {
		return fmt.Sprintf("%s from: %s %s %s %s",
			n.Date.Format(dateFormat), n.Account.Display(), n.Amount.Neg(), n.Currency, n.AdditionalInfo)
	}
	return fmt.Sprintf("%s to: %s %s %s %s",
		n.Date.Format(dateFormat), n.Account.Display(), n.Amount, n.Currency, n.AdditionalInfo)
}

// Transfer is a logical two-sided event reconstructed from two Normals on
// different accounts that sum to zero. Amount is always positive and Date is
// the debit leg's date.
type Transfer struct {
	From               *Account        `json:"from"`
	To                 *Account        `json:"to"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Date               time.Time       `json:"date"`
	FromAdditionalInfo string          `json:"from_additional_info"`
	ToAdditionalInfo   string          `json:"to_additional_info"`
}

func (t *Transfer) String() string {
	return fmt.Sprintf("%s from: %s to: %s %s %s %s %s",
		t.Date.Format(dateFormat), t.From.Display(), t.To.Display(),
		t.Amount, t.Currency, t.FromAdditionalInfo, t.ToAdditionalInfo)
}

// Transaction is a tagged union: exactly one of Normal or Transfer is set.
type Transaction struct {
	Normal   *Normal   `json:"normal,omitempty"`
	Transfer *Transfer `json:"transfer,omitempty"`
}

func (t Transaction) String() string {
	if t.Transfer != nil {
		return t.Transfer.String()
	}
	return t.Normal.String()
}

// Date builds a calendar date at midnight UTC. Transaction dates are dates,
// not timestamps; pinning them to a fixed instant keeps day arithmetic
// exact.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}
