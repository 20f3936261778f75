package paia

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field identifies an item document field usable in filter criteria.
type Field int

const (
	FieldStatus Field = iota
	FieldStorage
	FieldStorageID
	FieldLabel
	FieldQueue
)

// Criteria maps filter fields to their allowed values. A document passes
// when, for every field present, its value matches one of the allowed values
// (fields combine with AND, values for one field with OR). Status values
// compare numerically, so "3" and 3 are the same code.
type Criteria map[Field][]string

// FilterDocuments returns the subset of docs matching the criteria. The
// result preserves input order and is always a subset of the input.
func FilterDocuments(docs []ItemDocument, criteria Criteria) []ItemDocument {
	if len(criteria) == 0 {
		return docs
	}
	out := make([]ItemDocument, 0, len(docs))
	for _, doc := range docs {
		if matchesCriteria(doc, criteria) {
			out = append(out, doc)
		}
	}
	return out
}

func matchesCriteria(doc ItemDocument, criteria Criteria) bool {
	for field, allowed := range criteria {
		value := fieldValue(doc, field)
		matched := false
		for _, candidate := range allowed {
			if valueEqual(value, candidate) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func fieldValue(doc ItemDocument, field Field) string {
	switch field {
	case FieldStatus:
		return doc.Status.String()
	case FieldStorage:
		return doc.Storage
	case FieldStorageID:
		return doc.StorageID
	case FieldLabel:
		return doc.Label
	case FieldQueue:
		return strconv.Itoa(doc.Queue)
	}
	return ""
}

// valueEqual compares two field values, falling back to numeric comparison
// so that string and numeric status representations match each other.
func valueEqual(a, b string) bool {
	if a == b {
		return true
	}
	ai, errA := strconv.Atoi(strings.TrimSpace(a))
	bi, errB := strconv.Atoi(strings.TrimSpace(b))
	return errA == nil && errB == nil && ai == bi
}

// statusCriteria builds a status-only Criteria from a set of codes.
func statusCriteria(statuses []Status) Criteria {
	allowed := make([]string, len(statuses))
	for i, s := range statuses {
		allowed[i] = s.String()
	}
	return Criteria{FieldStatus: allowed}
}

// GetItems retrieves the full raw item list for the patron. The list is
// fetched fresh on every call. Fetch failures degrade to an empty list per
// the read policy; only credential failures propagate.
func (c *Client) GetItems(ctx context.Context) ([]ItemDocument, error) {
	data, err := c.patronGet(ctx, "items")
	if err != nil {
		return []ItemDocument{}, c.absorbReadFailure(err, "items")
	}

	var resp itemsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return []ItemDocument{}, c.absorbReadFailure(fmt.Errorf("%w: decoding items: %v", ErrProtocol, err), "items")
	}

	c.logger.Debug().Int("count", len(resp.Doc)).Msg("Retrieved item documents")
	return resp.Doc, nil
}

// GetHolds returns the normalized holds view of the patron's items.
func (c *Client) GetHolds(ctx context.Context) ([]HoldRecord, error) {
	docs, err := c.GetItems(ctx)
	if err != nil {
		return []HoldRecord{}, err
	}
	return c.ProjectHolds(docs), nil
}

// GetLoans returns the normalized loan view of the patron's items.
func (c *Client) GetLoans(ctx context.Context) ([]LoanRecord, error) {
	docs, err := c.GetItems(ctx)
	if err != nil {
		return []LoanRecord{}, err
	}
	return c.ProjectLoans(docs), nil
}

// GetStorageRequests returns the normalized storage-request view of the
// patron's items.
func (c *Client) GetStorageRequests(ctx context.Context) ([]StorageRequestRecord, error) {
	docs, err := c.GetItems(ctx)
	if err != nil {
		return []StorageRequestRecord{}, err
	}
	return c.ProjectStorageRequests(docs), nil
}

// ProjectHolds filters docs down to the configured hold statuses and
// projects each into a HoldRecord.
func (c *Client) ProjectHolds(docs []ItemDocument) []HoldRecord {
	docs = FilterDocuments(docs, statusCriteria(c.holdStatuses))
	records := make([]HoldRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, c.holdRecord(doc))
	}
	return records
}

// ProjectLoans filters docs down to held items and projects each into a
// LoanRecord.
func (c *Client) ProjectLoans(docs []ItemDocument) []LoanRecord {
	docs = FilterDocuments(docs, statusCriteria([]Status{StatusHeld}))
	records := make([]LoanRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, c.loanRecord(doc))
	}
	return records
}

// ProjectStorageRequests filters docs down to ordered items and projects
// each into a StorageRequestRecord.
func (c *Client) ProjectStorageRequests(docs []ItemDocument) []StorageRequestRecord {
	docs = FilterDocuments(docs, statusCriteria([]Status{StatusOrdered}))
	records := make([]StorageRequestRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, c.storageRequestRecord(doc))
	}
	return records
}

func (c *Client) holdRecord(doc ItemDocument) HoldRecord {
	record := HoldRecord{
		ID:        c.resolver(doc.Item),
		Title:     doc.Label,
		Status:    doc.Status.Label(),
		Location:  doc.Storage,
		Queue:     doc.Queue,
		Available: doc.Status == StatusProvided,
	}

	switch doc.Status {
	case StatusProvided:
		record.Expire = doc.Endtime
	case StatusReserved, StatusOrdered:
		record.Create = doc.Starttime
	}

	// The cancel token is the raw item URI: the server resolves it, not the
	// host catalog.
	if doc.CanCancel != nil && *doc.CanCancel {
		record.CancelToken = doc.Item
	}
	if c.holdLink != nil {
		record.Link = c.holdLink(doc)
	}
	return record
}

func (c *Client) loanRecord(doc ItemDocument) LoanRecord {
	renewable := c.renewableDefault
	if doc.CanRenew != nil {
		renewable = *doc.CanRenew
	}

	due := doc.Endtime
	if due == "" {
		due = doc.Duedate
	}

	record := LoanRecord{
		ID:        c.resolver(doc.Item),
		Title:     doc.Label,
		Renewable: renewable,
		DueDate:   due,
		Renewals:  doc.Renewals,
		Location:  doc.Storage,
		Message:   doc.Error,
	}
	if renewable {
		record.RenewToken = doc.Item
	}
	return record
}

func (c *Client) storageRequestRecord(doc ItemDocument) StorageRequestRecord {
	record := StorageRequestRecord{
		ID:       c.resolver(doc.Item),
		Title:    doc.Label,
		Status:   doc.Status.Label(),
		Location: doc.Storage,
		Queue:    doc.Queue,
		Create:   doc.Starttime,
	}
	if doc.CanCancel != nil && *doc.CanCancel {
		record.CancelToken = doc.Item
	}
	return record
}
