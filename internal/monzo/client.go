// Package monzo reads pots and transactions from the Monzo API.
package monzo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/internal/transport"
	"github.com/solstice035/monzo-analysis/internal/types"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// DefaultPageSize is the number of transactions requested per page
const DefaultPageSize = 100

// ErrNoAccessToken is returned when the client is built without a token
var ErrNoAccessToken = errors.New("monzo access token is required")

// Client reads from the Monzo API with a bearer token
type Client struct {
	transport *transport.JSONTransport
	accountID string
	pageSize  int
	logger    types.Logger
}

// Options configures the client
type Options struct {
	// BaseURL defaults to the public API
	BaseURL string

	// AccessToken is the OAuth access token (required)
	AccessToken string

	// AccountID is the current account whose pots GetPot searches
	AccountID string

	// PageSize overrides DefaultPageSize
	PageSize int

	// Transport settings
	Timeout     time.Duration
	RetryConfig *types.RetryConfig

	// Logger for debug logging
	Logger types.Logger

	// Hooks for request observability
	Hooks *types.Hooks
}

var (
	_ budget.PotSource = (*Client)(nil)
	_ budget.PotLister = (*Client)(nil)
)

// NewClient creates a Monzo API client
func NewClient(opts *Options) (*Client, error) {
	if opts == nil || opts.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultMonzoBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout == 0 {
		opts.Timeout = types.DefaultTimeout
	}
	if opts.RetryConfig == nil {
		opts.RetryConfig = &types.RetryConfig{
			MaxRetries: 3,
			RetryWait:  1 * time.Second,
			MaxWait:    30 * time.Second,
		}
	}

	t := transport.NewJSONTransport(&transport.Options{
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})
	t.SetAuth(opts.AccessToken)

	return &Client{
		transport: t,
		accountID: opts.AccountID,
		pageSize:  opts.PageSize,
		logger:    opts.Logger,
	}, nil
}

type potResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Balance  int64     `json:"balance"`
	Currency string    `json:"currency"`
	Deleted  bool      `json:"deleted"`
	Updated  time.Time `json:"updated"`
}

func (p *potResponse) toPot(accountID string) *budget.Pot {
	return &budget.Pot{
		ID:        p.ID,
		AccountID: accountID,
		Name:      p.Name,
		Balance:   p.Balance,
		Deleted:   p.Deleted,
		UpdatedAt: p.Updated,
	}
}

// ListPots returns the pots of a current account, leaving out deleted ones when activeOnly is set
func (c *Client) ListPots(ctx context.Context, accountID string, activeOnly bool) ([]*budget.Pot, error) {
	var resp struct {
		Pots []*potResponse `json:"pots"`
	}

	params := url.Values{"current_account_id": {accountID}}
	if err := c.transport.Get(ctx, "/pots", params, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to list pots")
	}

	pots := make([]*budget.Pot, 0, len(resp.Pots))
	for _, p := range resp.Pots {
		if activeOnly && p.Deleted {
			continue
		}
		pots = append(pots, p.toPot(accountID))
	}

	return pots, nil
}

// GetPot finds a pot of the configured account or returns ErrNotFound
func (c *Client) GetPot(ctx context.Context, potID string) (*budget.Pot, error) {
	if c.accountID == "" {
		return nil, errors.Wrap(budget.ErrNoStore, "monzo account id is required to look up pots")
	}

	pots, err := c.ListPots(ctx, c.accountID, false)
	if err != nil {
		return nil, err
	}

	for _, p := range pots {
		if p.ID == potID {
			return p, nil
		}
	}
	return nil, errors.Wrapf(budget.ErrNotFound, "pot %s", potID)
}

type merchantResponse struct {
	Name string `json:"name"`
}

type transactionResponse struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Created     time.Time         `json:"created"`
	Settled     string            `json:"settled"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Merchant    *merchantResponse `json:"merchant"`
	Metadata    map[string]string `json:"metadata"`
}

func (t *transactionResponse) toTransaction(accountID string) *budget.Transaction {
	tx := &budget.Transaction{
		ID:          t.ID,
		AccountID:   accountID,
		Amount:      t.Amount,
		OccurredAt:  t.Created,
		Description: t.Description,
		Metadata:    t.Metadata,
	}
	if t.Merchant != nil && t.Merchant.Name != "" {
		name := t.Merchant.Name
		tx.MerchantName = &name
	}
	if t.Category != "" {
		category := t.Category
		tx.Category = &category
	}
	if settled, err := time.Parse(time.RFC3339Nano, t.Settled); err == nil {
		tx.SettledAt = &settled
	}
	return tx
}

// ListTransactions pages through the account's transactions created at or after since.
// A zero since fetches everything the token can see.
func (c *Client) ListTransactions(ctx context.Context, accountID string, since time.Time) ([]*budget.Transaction, error) {
	var out []*budget.Transaction
	cursor := ""
	if !since.IsZero() {
		cursor = since.UTC().Format(time.RFC3339)
	}

	for {
		params := url.Values{
			"account_id": {accountID},
			"expand[]":   {"merchant"},
			"limit":      {strconv.Itoa(c.pageSize)},
		}
		if cursor != "" {
			params.Set("since", cursor)
		}

		var resp struct {
			Transactions []*transactionResponse `json:"transactions"`
		}
		if err := c.transport.Get(ctx, "/transactions", params, &resp); err != nil {
			return nil, errors.Wrap(err, "failed to list transactions")
		}

		for _, t := range resp.Transactions {
			out = append(out, t.toTransaction(accountID))
		}

		if c.logger != nil {
			c.logger.Debug("Fetched transaction page", "account", accountID, "count", len(resp.Transactions))
		}

		if len(resp.Transactions) < c.pageSize {
			break
		}
		// Monzo accepts a transaction id as the since cursor
		cursor = resp.Transactions[len(resp.Transactions)-1].ID
	}

	return out, nil
}
