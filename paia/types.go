package paia

import "encoding/json"

// Patron represents the response of the core/{patron} endpoint. Fields the
// protocol sends beyond the known ones are preserved in Extra.
type Patron struct {
	ID        string
	Username  string
	Firstname string
	Lastname  string
	Name      string
	Email     string
	Status    Status
	Expires   string
	Extra     map[string]any
}

var knownPatronFields = []string{
	"id", "username", "firstname", "lastname", "name", "email", "status", "expires",
}

// UnmarshalJSON decodes the known patron fields and keeps everything else in
// the Extra map so deployment-specific additions are not dropped.
func (p *Patron) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	str := func(key string) string {
		raw, ok := fields[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}

	p.ID = str("id")
	p.Username = str("username")
	p.Firstname = str("firstname")
	p.Lastname = str("lastname")
	p.Name = str("name")
	p.Email = str("email")
	p.Expires = str("expires")

	if raw, ok := fields["status"]; ok {
		if err := p.Status.UnmarshalJSON(raw); err != nil {
			return err
		}
	}

	for _, key := range knownPatronFields {
		delete(fields, key)
	}
	if len(fields) > 0 {
		p.Extra = make(map[string]any, len(fields))
		for key, raw := range fields {
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				continue
			}
			p.Extra[key] = value
		}
	}
	return nil
}

// ItemDocument is one element of the core/{patron}/items response. Which
// temporal field is meaningful depends on the status code: starttime for
// reserved/ordered items, endtime for provided (pickup deadline) and held
// (due date) items.
type ItemDocument struct {
	Item      string `json:"item"`
	Edition   string `json:"edition,omitempty"`
	Status    Status `json:"status"`
	Label     string `json:"label,omitempty"`
	Storage   string `json:"storage,omitempty"`
	StorageID string `json:"storageid,omitempty"`
	Queue     int    `json:"queue,omitempty"`
	Starttime string `json:"starttime,omitempty"`
	Endtime   string `json:"endtime,omitempty"`
	Duedate   string `json:"duedate,omitempty"`
	CanCancel *bool  `json:"cancancel,omitempty"`
	CanRenew  *bool  `json:"canrenew,omitempty"`
	Renewals  int    `json:"renewals,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FeeDocument is one element of the core/{patron}/fees response.
type FeeDocument struct {
	Amount    string `json:"amount"`
	FeeType   string `json:"feetype,omitempty"`
	FeeTypeID string `json:"feetypeid,omitempty"`
	Date      string `json:"date,omitempty"`
	Item      string `json:"item,omitempty"`
	Edition   string `json:"edition,omitempty"`
	About     string `json:"about,omitempty"`
}

// HoldRecord is the normalized view of a reserved, ordered or provided item.
// Every field is always populated; optional source fields default to their
// zero value.
type HoldRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Queue       int    `json:"queue"`
	Available   bool   `json:"available"`
	Expire      string `json:"expire"`
	Create      string `json:"create"`
	CancelToken string `json:"cancel_token"`
	Link        string `json:"link"`
}

// LoanRecord is the normalized view of an item currently on loan.
type LoanRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Renewable  bool   `json:"renewable"`
	DueDate    string `json:"duedate"`
	Renewals   int    `json:"renewals"`
	Location   string `json:"location"`
	Message    string `json:"message"`
	RenewToken string `json:"renew_token"`
}

// StorageRequestRecord is the normalized view of an item ordered from
// storage. It is a reduced hold view without the availability semantics.
type StorageRequestRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Queue       int    `json:"queue"`
	Create      string `json:"create"`
	CancelToken string `json:"cancel_token"`
}

// FeeRecord is the normalized view of a fee document.
type FeeRecord struct {
	Amount    Money  `json:"amount"`
	FeeType   string `json:"feetype"`
	FeeTypeID string `json:"feetypeid"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	DueDate   string `json:"duedate"`
	Edition   string `json:"edition"`
	About     string `json:"about"`
}

// Wire shapes.

type loginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	GrantType string `json:"grant_type"`
	Scope     string `json:"scope"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Patron      string `json:"patron"`
	Scope       string `json:"scope"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type itemsResponse struct {
	Doc []ItemDocument `json:"doc"`
}

type feesResponse struct {
	Fee []FeeDocument `json:"fee"`
}

type changeRequest struct {
	Patron      string `json:"patron"`
	Username    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type actionItem struct {
	Item string `json:"item"`
}

type actionRequest struct {
	Doc []actionItem `json:"doc"`
}

type actionDoc struct {
	Item   string `json:"item"`
	Status Status `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

type actionResponse struct {
	Doc []actionDoc `json:"doc"`
}
