package nordigen

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bankmatch/pkg/domain"
)

// wire structs for the Bank Account Data v2 API; we only parse the fields
// we use

type tokenNewRequest struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
}

type tokenNewBody struct {
	Access         string `json:"access"`
	AccessExpires  int64  `json:"access_expires"`
	Refresh        string `json:"refresh"`
	RefreshExpires int64  `json:"refresh_expires"`
}

type tokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenRefreshBody struct {
	Access        string `json:"access"`
	AccessExpires int64  `json:"access_expires"`
}

type institutionBody struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	BIC       string   `json:"bic"`
	Countries []string `json:"countries"`
	Logo      string   `json:"logo"`
}

func (b institutionBody) institution() domain.Institution {
	return domain.Institution{
		ID:        b.ID,
		Name:      b.Name,
		Countries: b.Countries,
	}
}

type requisitionRequest struct {
	Redirect      string `json:"redirect"`
	InstitutionID string `json:"institution_id"`
	Reference     string `json:"reference,omitempty"`
}

type requisitionBody struct {
	ID            string   `json:"id"`
	Created       string   `json:"created"`
	Status        string   `json:"status"`
	InstitutionID string   `json:"institution_id"`
	Agreement     string   `json:"agreement"`
	Accounts      []string `json:"accounts"`
	Link          string   `json:"link"`
}

type accountDetailsBody struct {
	Account accountBody `json:"account"`
}

type accountBody struct {
	IBAN        string `json:"iban"`
	BBAN        string `json:"bban"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

func (b accountBody) account(id string) *domain.Account {
	return &domain.Account{
		ID:          id,
		IBAN:        b.IBAN,
		BBAN:        b.BBAN,
		Name:        b.Name,
		DisplayName: b.DisplayName,
		Status:      b.Status,
	}
}

type transactionsBody struct {
	Transactions struct {
		Booked []bookedTransaction `json:"booked"`
		// pending transactions have no stable id yet and are ignored
	} `json:"transactions"`
}

type bookedTransaction struct {
	TransactionID     string            `json:"transactionId"`
	BookingDate       string            `json:"bookingDate"`
	ValueDate         string            `json:"valueDate"`
	TransactionAmount transactionAmount `json:"transactionAmount"`
	RemittanceInfo    string            `json:"remittanceInformationUnstructured"`
}

type transactionAmount struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

func (t bookedTransaction) raw(accountID string) (domain.RawTransaction, error) {
	amount, err := decimal.NewFromString(t.TransactionAmount.Amount)
	if err != nil {
		return domain.RawTransaction{}, fmt.Errorf("transaction %s: bad amount %q: %w",
			t.TransactionID, t.TransactionAmount.Amount, err)
	}

	rawDate := t.ValueDate
	if rawDate == "" {
		rawDate = t.BookingDate
	}
	date, err := domain.ParseDate(rawDate)
	if err != nil {
		return domain.RawTransaction{}, fmt.Errorf("transaction %s: bad date %q: %w",
			t.TransactionID, rawDate, err)
	}

	return domain.RawTransaction{
		ID:             t.TransactionID,
		AccountID:      accountID,
		Date:           date,
		Currency:       t.TransactionAmount.Currency,
		Amount:         amount,
		AdditionalInfo: t.RemittanceInfo,
	}, nil
}
