package domain

import (
	"time"
)

// refreshMargin is how close to expiry a token part is still trusted.
const refreshMargin = 30 * time.Second

// Token is an access/refresh secret pair as issued by the bank data API.
type Token struct {
	Access  TokenPart `json:"access"`
	Refresh TokenPart `json:"refresh"`
}

type TokenPart struct {
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenPart creates a token part expiring ttl seconds from now.
func NewTokenPart(secret string, ttl int64) TokenPart {
	return TokenPart{
		Secret:    secret,
		ExpiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}
}

// Fresh returns whether the part can still be used, with a safety margin so
// a token does not expire mid-request.
func (p TokenPart) Fresh() bool {
	return time.Now().Add(refreshMargin).Before(p.ExpiresAt)
}
