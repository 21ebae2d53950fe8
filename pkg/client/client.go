package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to the auction marketplace API. Mutating calls are sent
// exactly once; the client never retries on its own.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken seeds the bearer credential, e.g. from a restored session.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a client against the given base URL, e.g.
// "https://auctions.example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer credential for subsequent requests. An empty
// token sends requests unauthenticated.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	var out struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Login authenticates and returns identity plus credentials. The chosen
// role becomes the session's active role; administrators pass an empty role.
func (c *Client) Login(ctx context.Context, email, password string, role Role) (*User, *Credentials, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"role":     string(role),
	}
	var out struct {
		Data struct {
			User User        `json:"user"`
			Auth Credentials `json:"auth"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, nil, err
	}
	c.token = out.Data.Auth.Token
	return &out.Data.User, &out.Data.Auth, nil
}

// Logout revokes the server-side session for the current credential.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.token = ""
	return err
}

// Me fetches the account behind the current credential.
func (c *Client) Me(ctx context.Context) (*User, Role, error) {
	var out struct {
		Data struct {
			User       User `json:"user"`
			ActiveRole Role `json:"activeRole"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, "", err
	}
	return &out.Data.User, out.Data.ActiveRole, nil
}

// ListAuctions pages through the auction catalog. Status and search narrow
// the listing; empty values mean no filter.
func (c *Client) ListAuctions(ctx context.Context, status, search string, page PageQuery) (*Page[Auction], error) {
	q := pageValues(page)
	if status != "" {
		q.Set("status", status)
	}
	if search != "" {
		q.Set("q", search)
	}
	var out Page[Auction]
	if err := c.do(ctx, http.MethodGet, "/auctions", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAuction fetches one auction with its lots.
func (c *Client) GetAuction(ctx context.Context, auctionID string) (*Auction, error) {
	var out struct {
		Data Auction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/auctions/"+url.PathEscape(auctionID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateAuction opens a new planned auction.
func (c *Client) CreateAuction(ctx context.Context, input AuctionInput) (*Auction, error) {
	var out struct {
		Data Auction `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auctions", nil, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateAuction edits a planned auction.
func (c *Client) UpdateAuction(ctx context.Context, auctionID string, input AuctionInput) (*Auction, error) {
	var out struct {
		Data Auction `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/auctions/"+url.PathEscape(auctionID), nil, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ChangeAuctionStatus advances the auction lifecycle.
func (c *Client) ChangeAuctionStatus(ctx context.Context, auctionID, status string) (*Auction, error) {
	var out struct {
		Data Auction `json:"data"`
	}
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/auctions/"+url.PathEscape(auctionID)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteAuction removes an auction that is not in active bidding.
func (c *Client) DeleteAuction(ctx context.Context, auctionID string) error {
	return c.do(ctx, http.MethodDelete, "/auctions/"+url.PathEscape(auctionID), nil, nil, nil)
}

// ListLots pages through an auction's lots in lot-number order.
func (c *Client) ListLots(ctx context.Context, auctionID string, page PageQuery) (*Page[Lot], error) {
	var out Page[Lot]
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots"
	if err := c.do(ctx, http.MethodGet, path, pageValues(page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLot fetches one lot.
func (c *Client) GetLot(ctx context.Context, auctionID, lotID string) (*Lot, error) {
	var out struct {
		Data Lot `json:"data"`
	}
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots/" + url.PathEscape(lotID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateLot adds a lot to a planned auction.
func (c *Client) CreateLot(ctx context.Context, auctionID string, input LotInput) (*Lot, error) {
	var out struct {
		Data Lot `json:"data"`
	}
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots"
	if err := c.do(ctx, http.MethodPost, path, nil, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateLot edits a lot that has not seen bidding.
func (c *Client) UpdateLot(ctx context.Context, auctionID, lotID string, input LotInput) (*Lot, error) {
	var out struct {
		Data Lot `json:"data"`
	}
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots/" + url.PathEscape(lotID)
	if err := c.do(ctx, http.MethodPut, path, nil, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteLot removes a lot that has not seen bidding.
func (c *Client) DeleteLot(ctx context.Context, auctionID, lotID string) error {
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots/" + url.PathEscape(lotID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// PlaceBid submits a bid, returning the accepted bid and the updated lot.
// A rejected bid surfaces as ValidationError or ConflictError; the call is
// never retried.
func (c *Client) PlaceBid(ctx context.Context, auctionID, lotID string, amount decimal.Decimal) (*Bid, *Lot, error) {
	var out struct {
		Data struct {
			Bid Bid `json:"bid"`
			Lot Lot `json:"lot"`
		} `json:"data"`
	}
	body := map[string]decimal.Decimal{"amount": amount}
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots/" + url.PathEscape(lotID) + "/bids"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, nil, err
	}
	return &out.Data.Bid, &out.Data.Lot, nil
}

// ListBids pages through a lot's bid history, newest first.
func (c *Client) ListBids(ctx context.Context, auctionID, lotID string, page PageQuery) (*Page[Bid], error) {
	var out Page[Bid]
	path := "/auctions/" + url.PathEscape(auctionID) + "/lots/" + url.PathEscape(lotID) + "/bids"
	if err := c.do(ctx, http.MethodGet, path, pageValues(page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyActivity fetches the buyer view: lots currently led and lots won.
func (c *Client) MyActivity(ctx context.Context) (*BuyerActivity, error) {
	var out struct {
		Data BuyerActivity `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/my/activity", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// MyListings pages through the authenticated seller's lots.
func (c *Client) MyListings(ctx context.Context, page PageQuery) (*Page[Lot], error) {
	var out Page[Lot]
	if err := c.do(ctx, http.MethodGet, "/my/listings", pageValues(page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageValues(page PageQuery) url.Values {
	q := url.Values{}
	if page.Page > 0 {
		q.Set("page", strconv.Itoa(page.Page))
	}
	if page.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(page.PageSize))
	}
	return q
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// do performs one request and decodes the response into out (ignored when
// out is nil). Any failure to obtain or decode a response is a
// TransportError; HTTP error statuses map onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= 400 {
		return mapStatusError(resp.StatusCode, raw, op)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func mapStatusError(status int, raw []byte, op string) error {
	var envelope errorEnvelope
	message := http.StatusText(status)
	var details map[string]any
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
		details = envelope.Error.Details
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: message, Details: details}
	case http.StatusUnauthorized:
		return &AuthorizationError{Message: message, Authenticated: false}
	case http.StatusForbidden:
		return &AuthorizationError{Message: message, Authenticated: true}
	case http.StatusNotFound:
		return &NotFoundError{Message: message}
	case http.StatusConflict:
		return &ConflictError{Message: message, Details: details}
	}
	return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", status, message)}
}
