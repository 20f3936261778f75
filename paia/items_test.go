package paia

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func newProjectionClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient("http://paia.example.org", "user", "pass", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestFilterDocuments(t *testing.T) {
	docs := []ItemDocument{
		{Item: "A", Status: StatusReserved, Storage: "main"},
		{Item: "B", Status: StatusHeld, Storage: "main"},
		{Item: "C", Status: StatusProvided, Storage: "branch"},
		{Item: "D", Status: StatusOrdered, Storage: "branch"},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "single status",
			criteria: Criteria{FieldStatus: {"3"}},
			want:     []string{"B"},
		},
		{
			name:     "multiple statuses combine with OR",
			criteria: Criteria{FieldStatus: {"1", "2", "4"}},
			want:     []string{"A", "C", "D"},
		},
		{
			name: "fields combine with AND",
			criteria: Criteria{
				FieldStatus:  {"1", "2", "4"},
				FieldStorage: {"branch"},
			},
			want: []string{"C", "D"},
		},
		{
			name:     "no criteria keeps everything",
			criteria: nil,
			want:     []string{"A", "B", "C", "D"},
		},
		{
			name:     "nothing matches",
			criteria: Criteria{FieldStatus: {"5"}},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDocuments(docs, tt.criteria)

			ids := make([]string, 0, len(got))
			for _, doc := range got {
				ids = append(ids, doc.Item)
			}
			assert.Equal(t, tt.want, ids)

			// Every result must be an element of the input.
			for _, doc := range got {
				assert.Contains(t, docs, doc)
			}
		})
	}
}

func TestValueEqualNumericStatus(t *testing.T) {
	assert.True(t, valueEqual("3", "3"))
	assert.True(t, valueEqual("3", " 3"))
	assert.True(t, valueEqual("03", "3"))
	assert.False(t, valueEqual("3", "4"))
	assert.False(t, valueEqual("main", "3"))
	assert.True(t, valueEqual("main", "main"))
}

func TestProjectHolds(t *testing.T) {
	client := newProjectionClient(t)

	docs := []ItemDocument{
		{Item: "uri:1", Status: StatusReserved, Label: "First", Starttime: "2026-08-01", Queue: 2},
		{Item: "uri:2", Status: StatusProvided, Label: "Second", Endtime: "2026-09-15", CanCancel: boolPtr(true)},
		{Item: "uri:3", Status: StatusHeld, Label: "On loan"},
		{Item: "uri:4", Status: StatusOrdered, Starttime: "2026-08-20"},
	}

	holds := client.ProjectHolds(docs)
	require.Len(t, holds, 3)

	reserved := holds[0]
	assert.Equal(t, "uri:1", reserved.ID)
	assert.Equal(t, "reserved", reserved.Status)
	assert.False(t, reserved.Available)
	assert.Equal(t, "2026-08-01", reserved.Create)
	assert.Empty(t, reserved.Expire)
	assert.Equal(t, 2, reserved.Queue)
	assert.Empty(t, reserved.CancelToken)

	provided := holds[1]
	assert.True(t, provided.Available)
	assert.Equal(t, "2026-09-15", provided.Expire)
	assert.Empty(t, provided.Create)
	assert.Equal(t, "uri:2", provided.CancelToken)

	ordered := holds[2]
	assert.Equal(t, "ordered", ordered.Status)
	assert.Equal(t, "2026-08-20", ordered.Create)
	assert.Empty(t, ordered.Title)
}

func TestProjectHoldsWithoutOrdered(t *testing.T) {
	client := newProjectionClient(t, WithHoldStatuses(StatusReserved, StatusProvided))

	docs := []ItemDocument{
		{Item: "uri:1", Status: StatusReserved},
		{Item: "uri:2", Status: StatusOrdered},
	}

	holds := client.ProjectHolds(docs)
	require.Len(t, holds, 1)
	assert.Equal(t, "uri:1", holds[0].ID)
}

func TestProjectLoans(t *testing.T) {
	client := newProjectionClient(t)

	docs := []ItemDocument{
		{
			Item:     "uri:1",
			Status:   StatusHeld,
			Label:    "Renewable book",
			Endtime:  "2026-09-30",
			CanRenew: boolPtr(true),
			Renewals: 2,
			Storage:  "main",
		},
		{
			Item:     "uri:2",
			Status:   StatusHeld,
			Label:    "Blocked book",
			Duedate:  "2026-09-10",
			CanRenew: boolPtr(false),
			Error:    "renewal blocked by recall",
		},
		{Item: "uri:3", Status: StatusProvided},
	}

	loans := client.ProjectLoans(docs)
	require.Len(t, loans, 2)

	renewable := loans[0]
	assert.Equal(t, "uri:1", renewable.ID)
	assert.True(t, renewable.Renewable)
	assert.Equal(t, "2026-09-30", renewable.DueDate)
	assert.Equal(t, 2, renewable.Renewals)
	assert.Equal(t, "main", renewable.Location)
	assert.Equal(t, "uri:1", renewable.RenewToken)

	blocked := loans[1]
	assert.False(t, blocked.Renewable)
	assert.Equal(t, "2026-09-10", blocked.DueDate)
	assert.Equal(t, "renewal blocked by recall", blocked.Message)
	assert.Empty(t, blocked.RenewToken)
}

func TestProjectLoansRenewableDefault(t *testing.T) {
	doc := ItemDocument{Item: "uri:1", Status: StatusHeld}

	strict := newProjectionClient(t)
	loans := strict.ProjectLoans([]ItemDocument{doc})
	require.Len(t, loans, 1)
	assert.False(t, loans[0].Renewable)
	assert.Empty(t, loans[0].RenewToken)

	lenient := newProjectionClient(t, WithRenewableDefault(true))
	loans = lenient.ProjectLoans([]ItemDocument{doc})
	require.Len(t, loans, 1)
	assert.True(t, loans[0].Renewable)
	assert.Equal(t, "uri:1", loans[0].RenewToken)
}

func TestProjectStorageRequests(t *testing.T) {
	client := newProjectionClient(t)

	docs := []ItemDocument{
		{Item: "uri:1", Status: StatusOrdered, Label: "Archive box", Starttime: "2026-08-25", Queue: 1, CanCancel: boolPtr(true)},
		{Item: "uri:2", Status: StatusReserved},
	}

	requests := client.ProjectStorageRequests(docs)
	require.Len(t, requests, 1)

	request := requests[0]
	assert.Equal(t, "uri:1", request.ID)
	assert.Equal(t, "Archive box", request.Title)
	assert.Equal(t, "ordered", request.Status)
	assert.Equal(t, "2026-08-25", request.Create)
	assert.Equal(t, 1, request.Queue)
	assert.Equal(t, "uri:1", request.CancelToken)
}

func TestProjectionWithHoldLinkBuilder(t *testing.T) {
	client := newProjectionClient(t, WithHoldLinkBuilder(func(doc ItemDocument) string {
		return "https://catalog.example.org/record/" + doc.Item
	}))

	holds := client.ProjectHolds([]ItemDocument{{Item: "42", Status: StatusReserved}})
	require.Len(t, holds, 1)
	assert.Equal(t, "https://catalog.example.org/record/42", holds[0].Link)
}

func TestProjectionWithIDResolver(t *testing.T) {
	client := newProjectionClient(t, WithIDResolver(func(rawID string) string {
		return "ppn:" + rawID
	}))

	docs := []ItemDocument{
		{Item: "123", Status: StatusProvided, CanCancel: boolPtr(true)},
	}

	holds := client.ProjectHolds(docs)
	require.Len(t, holds, 1)
	assert.Equal(t, "ppn:123", holds[0].ID)
	// Cancel tokens stay raw: the server resolves them, not the catalog.
	assert.Equal(t, "123", holds[0].CancelToken)
}
