package paia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// defaultScope is the fixed scope list requested at login.
const defaultScope = "read_patron read_fees read_items write_items change_password"

// IDResolver maps a raw PAIA item URI to the identifier used by the host
// catalog. The default resolver is the identity function.
type IDResolver func(rawID string) string

// HoldLinkBuilder derives a catalog deep link for a hold record from its raw
// item document. The default builder produces no link.
type HoldLinkBuilder func(doc ItemDocument) string

// Client is a PAIA core client bound to one patron account. It owns the
// bearer-token session and re-authenticates transparently when the token
// expires. Session handling is serialized internally, so a single Client may
// be used from multiple goroutines.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     zerolog.Logger

	resolver         IDResolver
	holdLink         HoldLinkBuilder
	extractors       map[string]FeeExtractor
	store            SessionStore
	renewableDefault bool
	holdStatuses     []Status

	mu      sync.Mutex
	session *Session
}

// NewClient creates a new PAIA client. No network call is made until the
// first operation; credentials are verified on the first login.
func NewClient(baseURL, username, password string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("PAIA base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger,
		resolver:     func(rawID string) string { return rawID },
		extractors:   make(map[string]FeeExtractor),
		holdStatuses: []Status{StatusReserved, StatusOrdered, StatusProvided},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Login authenticates against auth/login and replaces the current session.
// Empty credentials fail with ErrInvalidCredentials before any network I/O.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

// Session returns a copy of the current session, if any.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	ses := *c.session
	return &ses
}

// loginLocked performs the login protocol. The caller must hold c.mu.
func (c *Client) loginLocked(ctx context.Context) (*Session, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrInvalidCredentials
	}

	body := loginRequest{
		Username:  c.username,
		Password:  c.password,
		GrantType: "password",
		Scope:     defaultScope,
	}

	data, err := c.do(ctx, http.MethodPost, "auth/login", "", body)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding login response: %v", ErrProtocol, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response without access_token", ErrProtocol)
	}
	if resp.Patron == "" {
		return nil, ErrMissingPatronID
	}

	ses := &Session{
		Token:     resp.AccessToken,
		PatronID:  resp.Patron,
		Scope:     strings.Fields(resp.Scope),
		ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	c.session = ses

	if c.store != nil {
		if err := c.store.Put(ctx, c.username, ses); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to persist session")
		}
	}

	c.logger.Debug().
		Str("patron", ses.PatronID).
		Time("expires", ses.ExpiresAt).
		Msg("PAIA login succeeded")

	return ses, nil
}

// ensureSession returns a valid session, performing at most one login. A
// stored session is restored first; an expired or missing session triggers
// exactly one (re-)login with the configured credentials. On failure the
// session is cleared and the login error is surfaced.
func (c *Client) ensureSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.session.Valid(now) {
		return c.session, nil
	}

	if c.session == nil && c.store != nil {
		stored, err := c.store.Get(ctx, c.username)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to load stored session")
		} else if stored.Valid(now) {
			c.session = stored
			return c.session, nil
		}
	}

	if c.session != nil {
		c.logger.Debug().Str("patron", c.session.PatronID).Msg("Session expired, re-authenticating")
	}

	ses, err := c.loginLocked(ctx)
	if err != nil {
		c.session = nil
		return nil, err
	}
	return ses, nil
}

// invalidate drops the current session so the next call re-authenticates.
func (c *Client) invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	if c.store != nil {
		if err := c.store.Delete(ctx, c.username); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to remove stored session")
		}
	}
}

// do performs a single HTTP exchange and decodes the uniform error envelope.
// A non-empty token is attached as a bearer Authorization header.
func (c *Client) do(ctx context.Context, method, endpoint, token string, body any) ([]byte, error) {
	requestURL := c.baseURL + "/" + endpoint

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
	}

	var apiErr APIError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Err != "" {
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		return nil, &apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProtocol, resp.StatusCode, string(data))
	}

	return data, nil
}

// patronGet performs an authenticated GET on a core/{patron} endpoint.
func (c *Client) patronGet(ctx context.Context, suffix string) ([]byte, error) {
	return c.patronCall(ctx, http.MethodGet, suffix, nil)
}

// patronPost performs an authenticated POST on a core/{patron} endpoint.
func (c *Client) patronPost(ctx context.Context, suffix string, body any) ([]byte, error) {
	return c.patronCall(ctx, http.MethodPost, suffix, body)
}

func (c *Client) patronCall(ctx context.Context, method, suffix string, body any) ([]byte, error) {
	ses, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := "core/" + url.PathEscape(ses.PatronID)
	if suffix != "" {
		endpoint += "/" + suffix
	}

	data, err := c.do(ctx, method, endpoint, ses.Token, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsTokenExpired() {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Token rejected, invalidating session")
			c.invalidate(ctx)
		}
		return nil, err
	}
	return data, nil
}

// absorbReadFailure implements the degradation policy for read operations:
// protocol, transport and token-expiry failures are logged and converted
// into an empty result, while credential-level failures propagate so the
// host application can re-prompt the patron.
func (c *Client) absorbReadFailure(err error, view string) error {
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAuthenticationFailed) {
		return err
	}
	c.logger.Warn().Err(err).Str("view", view).Msg("Read degraded to empty result")
	return nil
}

// GetPatron retrieves the patron account record. Protocol-supplied fields
// beyond the known ones are preserved in Patron.Extra.
func (c *Client) GetPatron(ctx context.Context) (*Patron, error) {
	data, err := c.patronGet(ctx, "")
	if err != nil {
		return nil, err
	}

	var patron Patron
	if err := json.Unmarshal(data, &patron); err != nil {
		return nil, fmt.Errorf("%w: decoding patron: %v", ErrProtocol, err)
	}
	if patron.ID == "" {
		if ses := c.Session(); ses != nil {
			patron.ID = ses.PatronID
		}
	}
	return &patron, nil
}

// ChangePassword performs the auth/change operation. The server echoes the
// patron id on success; anything else is a failure.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrInvalidCredentials
	}

	ses, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	body := changeRequest{
		Patron:      ses.PatronID,
		Username:    c.username,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}

	data, err := c.do(ctx, http.MethodPost, "auth/change", ses.Token, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsTokenExpired() {
			c.invalidate(ctx)
		}
		return err
	}

	// The patron field is a string on success. Some servers nest a per-patron
	// error object there instead of using the uniform envelope.
	var resp struct {
		Patron json.RawMessage `json:"patron"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("%w: decoding change response: %v", ErrProtocol, err)
	}

	var echoed string
	if err := json.Unmarshal(resp.Patron, &echoed); err == nil {
		if echoed == "" {
			return fmt.Errorf("%w: change response without patron id", ErrProtocol)
		}
		c.logger.Info().Str("patron", echoed).Msg("Password changed")
		return nil
	}

	var nested struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Patron, &nested); err == nil && nested.Error != "" {
		return fmt.Errorf("%w: %s", ErrProtocol, nested.Error)
	}
	return fmt.Errorf("%w: malformed change response", ErrProtocol)
}
