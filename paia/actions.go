package paia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ItemResult is the per-item outcome of a write operation.
type ItemResult struct {
	Item    string `json:"item"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// ActionReport aggregates the outcome of a cancel, renew or place-request
// call. Every requested item appears exactly once in Items.
type ActionReport struct {
	Items        []ItemResult `json:"items"`
	SuccessCount int          `json:"success_count"`
}

// AllFailed reports whether not a single item succeeded.
func (r *ActionReport) AllFailed() bool {
	return r.SuccessCount == 0 && len(r.Items) > 0
}

// postCondition validates a returned document beyond the absence of an
// error field. Used by renew to reject items whose status changed.
type postCondition func(doc actionDoc) (bool, string)

// PlaceRequest places a hold or storage request for the given item tokens.
func (c *Client) PlaceRequest(ctx context.Context, items []string) (*ActionReport, error) {
	return c.postAction(ctx, "request", items, nil)
}

// Renew requests a loan renewal for the given item tokens. An item counts as
// renewed only if its returned status is still held; any other status is a
// rejection even without an explicit error field.
func (c *Client) Renew(ctx context.Context, items []string) (*ActionReport, error) {
	return c.postAction(ctx, "renew", items, func(doc actionDoc) (bool, string) {
		if doc.Status == StatusHeld {
			return true, ""
		}
		return false, fmt.Sprintf("renewal rejected, item status is %s", doc.Status.Label())
	})
}

// Cancel cancels the holds or storage requests identified by the given item
// tokens. The report's SuccessCount equals the number of items the server
// confirmed cancelled.
func (c *Client) Cancel(ctx context.Context, items []string) (*ActionReport, error) {
	return c.postAction(ctx, "cancel", items, nil)
}

// postAction implements the shared write-operation shape: post the token
// list, then interpret either a blanket error envelope or a per-item doc
// array. Protocol failures never escape as errors; only the inability to
// establish a session does.
func (c *Client) postAction(ctx context.Context, op string, items []string, post postCondition) (*ActionReport, error) {
	if len(items) == 0 {
		return &ActionReport{Items: []ItemResult{}}, nil
	}

	body := actionRequest{Doc: make([]actionItem, len(items))}
	for i, item := range items {
		body.Doc[i] = actionItem{Item: item}
	}

	data, err := c.patronPost(ctx, op, body)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAuthenticationFailed) {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("operation", op).Msg("Write operation failed as a whole")
		return blanketFailure(items, errorMessage(err)), nil
	}

	var resp actionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return blanketFailure(items, "malformed response: "+err.Error()), nil
	}

	returned := make(map[string]actionDoc, len(resp.Doc))
	for _, doc := range resp.Doc {
		returned[doc.Item] = doc
	}

	report := &ActionReport{Items: make([]ItemResult, 0, len(items))}
	for _, item := range items {
		result := ItemResult{Item: item}
		doc, ok := returned[item]
		switch {
		case !ok:
			result.Message = "no result returned for item"
		case doc.Error != "":
			result.Message = doc.Error
			result.Status = doc.Status
		default:
			result.Success = true
			result.Status = doc.Status
			if post != nil {
				result.Success, result.Message = post(doc)
			}
		}
		if result.Success {
			report.SuccessCount++
		}
		report.Items = append(report.Items, result)
	}

	c.logger.Debug().
		Str("operation", op).
		Int("requested", len(items)).
		Int("succeeded", report.SuccessCount).
		Msg("Write operation completed")

	return report, nil
}

// blanketFailure reports every requested item as failed with one aggregate
// message, used when the server answers with the uniform error envelope.
func blanketFailure(items []string, message string) *ActionReport {
	report := &ActionReport{Items: make([]ItemResult, 0, len(items))}
	for _, item := range items {
		report.Items = append(report.Items, ItemResult{Item: item, Message: message})
	}
	return report
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}
