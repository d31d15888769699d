// Package nordigen is a client for the GoCardless Bank Account Data API
// (formerly Nordigen), covering the slice we need: token lifecycle,
// institution listing, requisitions and booked-transaction fetch.
package nordigen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"bankmatch/pkg/domain"
)

// https://developer.gocardless.com/bank-account-data/endpoints

const (
	DefaultBaseURL = "https://bankaccountdata.gocardless.com/api/v2"

	retries = 5
)

type Client struct {
	baseURL    string
	secretID   string
	secretKey  string
	httpClient *http.Client
	token      *domain.Token
}

type Option func(*Client)

// WithBaseURL points the client at a different API host, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithToken resumes a previously issued token instead of minting a new one.
func WithToken(t *domain.Token) Option {
	return func(c *Client) { c.token = t }
}

func New(secretID, secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		secretID:   secretID,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current token so the caller can persist it across runs.
func (c *Client) Token() *domain.Token {
	return c.token
}

// Institutions lists available institutions, optionally filtered by a
// two-letter country code.
func (c *Client) Institutions(country string) ([]domain.Institution, error) {
	query := url.Values{}
	if country != "" {
		query.Add("country", country)
	}

	var body []institutionBody
	err := c.get("institutions", "", query, &body)
	if err != nil {
		return nil, err
	}

	institutions := make([]domain.Institution, 0, len(body))
	for _, b := range body {
		institutions = append(institutions, b.institution())
	}
	return institutions, nil
}

// Requisition is an authorisation to read a set of accounts at one
// institution.
type Requisition struct {
	ID       string
	Created  string
	Status   string
	Link     string
	Accounts []*domain.Account
}

// Linked reports whether the user has completed the authorisation flow.
func (r *Requisition) Linked() bool {
	return r.Status == "LN"
}

// CreateRequisition starts a new authorisation for the institution. The user
// must visit the returned Link before the requisition's accounts become
// readable.
func (c *Client) CreateRequisition(institutionID, redirect, reference string) (*Requisition, error) {
	body := &requisitionBody{}
	err := c.post("requisitions", &requisitionRequest{
		Redirect:      redirect,
		InstitutionID: institutionID,
		Reference:     reference,
	}, body, true)
	if err != nil {
		return nil, err
	}
	return c.expandRequisition(body)
}

// Requisition fetches the current state of an existing requisition.
func (c *Client) Requisition(id string) (*Requisition, error) {
	body := &requisitionBody{}
	err := c.get("requisitions", id, nil, body)
	if err != nil {
		return nil, err
	}
	return c.expandRequisition(body)
}

func (c *Client) expandRequisition(body *requisitionBody) (*Requisition, error) {
	req := &Requisition{
		ID:      body.ID,
		Created: body.Created,
		Status:  body.Status,
		Link:    body.Link,
	}

	for _, accountID := range body.Accounts {
		account, err := c.accountDetails(accountID)
		if err != nil {
			return nil, err
		}
		if !account.Available() {
			continue
		}
		req.Accounts = append(req.Accounts, account)
	}

	return req, nil
}

func (c *Client) accountDetails(id string) (*domain.Account, error) {
	body := &accountDetailsBody{}
	err := c.get(fmt.Sprintf("accounts/%s/details", id), "", nil, body)
	if err != nil {
		return nil, err
	}
	return body.Account.account(id), nil
}

// Transactions fetches the booked transactions of an account. Pending
// entries are dropped.
func (c *Client) Transactions(accountID string) ([]domain.RawTransaction, error) {
	body := &transactionsBody{}
	err := c.get(fmt.Sprintf("accounts/%s/transactions", accountID), "", nil, body)
	if err != nil {
		return nil, err
	}

	txns := make([]domain.RawTransaction, 0, len(body.Transactions.Booked))
	for _, booked := range body.Transactions.Booked {
		raw, err := booked.raw(accountID)
		if err != nil {
			return nil, err
		}
		txns = append(txns, raw)
	}
	return txns, nil
}

// accessToken returns a usable bearer token, refreshing or re-issuing as
// needed.
func (c *Client) accessToken() (string, error) {
	if c.token != nil && c.token.Access.Fresh() {
		return c.token.Access.Secret, nil
	}

	if c.token != nil && c.token.Refresh.Fresh() {
		body := &tokenRefreshBody{}
		err := c.request("POST", "token/refresh", "", nil,
			&tokenRefreshRequest{Refresh: c.token.Refresh.Secret}, body, "")
		if err != nil {
			return "", err
		}
		c.token.Access = domain.NewTokenPart(body.Access, body.AccessExpires)
		return c.token.Access.Secret, nil
	}

	body := &tokenNewBody{}
	err := c.request("POST", "token/new", "", nil,
		&tokenNewRequest{SecretID: c.secretID, SecretKey: c.secretKey}, body, "")
	if err != nil {
		return "", err
	}
	c.token = &domain.Token{
		Access:  domain.NewTokenPart(body.Access, body.AccessExpires),
		Refresh: domain.NewTokenPart(body.Refresh, body.RefreshExpires),
	}
	return c.token.Access.Secret, nil
}

func (c *Client) get(endpoint, id string, query url.Values, out interface{}) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	return c.request("GET", endpoint, id, query, nil, out, token)
}

func (c *Client) post(endpoint string, in, out interface{}, authed bool) error {
	token := ""
	if authed {
		var err error
		token, err = c.accessToken()
		if err != nil {
			return err
		}
	}
	return c.request("POST", endpoint, "", nil, in, out, token)
}

func (c *Client) request(method, endpoint, id string, query url.Values, in, out interface{}, token string) error {
	u := c.baseURL + "/" + endpoint
	if id != "" {
		u += "/" + id
	}
	u += "/" // the API insists on trailing slashes
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequest(method, u, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		status := resp.StatusCode
		switch {
		case status >= 200 && status < 300:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(err)
			}
			return nil
		case status >= 500 || status == http.StatusTooManyRequests:
			// their trouble, retry
			return fmt.Errorf("%s %s: status %d (%s)", method, u, status, string(body))
		default:
			// ours, retrying won't help
			return backoff.Permanent(fmt.Errorf("%s %s: status %d (%s)", method, u, status, string(body)))
		}
	}

	return backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries))
}
