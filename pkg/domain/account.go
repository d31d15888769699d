package domain

// Account identifies a bank-held account. Many transactions share a pointer
// to the same Account; nothing mutates one after creation.
type Account struct {
	ID          string `json:"id"`
	IBAN        string `json:"iban,omitempty"`
	BBAN        string `json:"bban,omitempty"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Display returns the friendliest label we have for the account.
func (a *Account) Display() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Name != "" {
		return a.Name
	}
	if a.BBAN != "" {
		return a.BBAN
	}
	return a.ID
}

// Available reports whether the bank still exposes this account.
func (a *Account) Available() bool {
	return a.Status == "enabled"
}
