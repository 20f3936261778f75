package paia

import (
	"bytes"
	"fmt"
	"strconv"
)

// Status describes the relation between a patron and a document as defined by
// the PAIA core specification.
type Status int

const (
	StatusNoRelation Status = iota // 0: no relation
	StatusReserved                 // 1: reserved, not yet available
	StatusOrdered                  // 2: ordered from storage
	StatusHeld                     // 3: on loan
	StatusProvided                 // 4: ready for pickup
	StatusRejected                 // 5: request rejected
)

var statusLabels = map[Status]string{
	StatusNoRelation: "no relation",
	StatusReserved:   "reserved",
	StatusOrdered:    "ordered",
	StatusHeld:       "held",
	StatusProvided:   "provided",
	StatusRejected:   "rejected",
}

// Label returns the semantic label for the status code.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "unknown"
}

// String returns the numeric representation of the status code.
func (s Status) String() string {
	return strconv.Itoa(int(s))
}

// UnmarshalJSON accepts both numeric and string representations of a status
// code. PAIA servers in the wild disagree on which one they emit.
func (s *Status) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*s = StatusNoRelation
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid status code %q", raw)
	}
	*s = Status(n)
	return nil
}
