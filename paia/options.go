package paia

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely. Callers that
// need custom transports or TLS settings configure them here.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithIDResolver sets the alternative-id resolution hook applied to item
// URIs before they appear in normalized records. The default is identity.
func WithIDResolver(resolver IDResolver) Option {
	return func(c *Client) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithHoldLinkBuilder sets the hook that derives a catalog deep link for
// hold records.
func WithHoldLinkBuilder(builder HoldLinkBuilder) Option {
	return func(c *Client) {
		c.holdLink = builder
	}
}

// WithFeeExtractor registers a title/duedate extraction strategy for a
// specific feetype id.
func WithFeeExtractor(feeTypeID string, extractor FeeExtractor) Option {
	return func(c *Client) {
		if extractor != nil {
			c.extractors[feeTypeID] = extractor
		}
	}
}

// WithSessionStore attaches a persistent session store. Sessions are loaded
// before the first login, saved after every login and removed on expiry.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithRenewableDefault sets the renewable flag used when a loan document
// carries no canrenew field. Deployments disagree on this default.
func WithRenewableDefault(renewable bool) Option {
	return func(c *Client) {
		c.renewableDefault = renewable
	}
}

// WithHoldStatuses overrides the status codes that populate the holds view.
// The shipped default is {reserved, ordered, provided}; some deployments
// exclude ordered items because they surface as storage requests instead.
func WithHoldStatuses(statuses ...Status) Option {
	return func(c *Client) {
		if len(statuses) > 0 {
			c.holdStatuses = statuses
		}
	}
}
