package paia

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// FeeExtractor derives a title and original due date from a fee document.
// Extractors are registered per feetype id; deployments use them to pull
// structured data out of the free-text about field.
type FeeExtractor func(doc FeeDocument) (title, dueDate string)

// BracketAboutExtractor implements the "<title> [<original due date>]"
// convention some ILS installations encode into the about field: the title
// is the text before the opening bracket, the date the text between the
// brackets.
func BracketAboutExtractor(doc FeeDocument) (string, string) {
	about := doc.About
	open := strings.Index(about, "[")
	if open < 0 {
		return strings.TrimSpace(about), ""
	}
	title := strings.TrimSpace(about[:open])
	rest := about[open+1:]
	if end := strings.Index(rest, "]"); end >= 0 {
		return title, strings.TrimSpace(rest[:end])
	}
	return title, strings.TrimSpace(rest)
}

// GetFees retrieves and normalizes the patron's fee documents. Fetch
// failures degrade to an empty list per the read policy.
func (c *Client) GetFees(ctx context.Context) ([]FeeRecord, error) {
	data, err := c.patronGet(ctx, "fees")
	if err != nil {
		return []FeeRecord{}, c.absorbReadFailure(err, "fees")
	}

	var resp feesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return []FeeRecord{}, c.absorbReadFailure(fmt.Errorf("%w: decoding fees: %v", ErrProtocol, err), "fees")
	}

	records := make([]FeeRecord, 0, len(resp.Fee))
	for _, doc := range resp.Fee {
		records = append(records, c.feeRecord(doc))
	}

	c.logger.Debug().Int("count", len(records)).Msg("Retrieved fee documents")
	return records, nil
}

func (c *Client) feeRecord(doc FeeDocument) FeeRecord {
	record := FeeRecord{
		Amount:    ParseMoney(doc.Amount),
		FeeType:   doc.FeeType,
		FeeTypeID: doc.FeeTypeID,
		Date:      doc.Date,
		Title:     strings.TrimSpace(doc.About),
		Edition:   doc.Edition,
		About:     doc.About,
	}
	if extractor, ok := c.extractors[doc.FeeTypeID]; ok {
		record.Title, record.DueDate = extractor(doc)
	}
	return record
}
