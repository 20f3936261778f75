// Package sessionstore provides implementations of the paia.SessionStore
// interface. The in-memory driver is built on hashicorp/go-memdb so stored
// sessions can be looked up by key and purged by expiry.
package sessionstore

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/patron-tools/patronctl/paia"
)

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"sessions": {
			Name: "sessions",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
				"expires": {
					Name:    "expires",
					Indexer: &memdb.IntFieldIndex{Field: "Expires"},
				},
			},
		},
	},
}

// record is the stored representation of a session.
type record struct {
	Key      string
	Token    string
	PatronID string
	Scope    []string
	Expires  int64
}

// MemDB is an in-memory paia.SessionStore.
type MemDB struct {
	db *memdb.MemDB
}

var _ paia.SessionStore = (*MemDB)(nil)

// NewMemDB creates a new empty in-memory session store.
func NewMemDB() (*MemDB, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &MemDB{db: db}, nil
}

// Get retrieves the session stored under key, or (nil, nil) if none exists.
func (s *MemDB) Get(_ context.Context, key string) (*paia.Session, error) {
	txn := s.db.Txn(false)
	obj, err := txn.First("sessions", "id", key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	rec := obj.(*record)
	return &paia.Session{
		Token:     rec.Token,
		PatronID:  rec.PatronID,
		Scope:     rec.Scope,
		ExpiresAt: time.Unix(rec.Expires, 0),
	}, nil
}

// Put stores the session under key, replacing any previous one.
func (s *MemDB) Put(_ context.Context, key string, ses *paia.Session) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	rec := &record{
		Key:      key,
		Token:    ses.Token,
		PatronID: ses.PatronID,
		Scope:    ses.Scope,
		Expires:  ses.ExpiresAt.Unix(),
	}
	if err := txn.Insert("sessions", rec); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// Delete removes the session stored under key, if any.
func (s *MemDB) Delete(_ context.Context, key string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll("sessions", "id", key); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// PurgeExpired removes all sessions whose expiry lies at or before now and
// returns how many were removed.
func (s *MemDB) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get("sessions", "id")
	if err != nil {
		return 0, err
	}

	var expired []*record
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rec := obj.(*record)
		if rec.Expires <= now.Unix() {
			expired = append(expired, rec)
		}
	}

	for _, rec := range expired {
		if err := txn.Delete("sessions", rec); err != nil {
			return 0, err
		}
	}

	txn.Commit()
	return len(expired), nil
}
