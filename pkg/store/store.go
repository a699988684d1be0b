// Package store persists in-progress multisig transactions.
//
// Collecting M-of-N signatures can take days of off-band back and forth, so
// a signer needs somewhere to park a half-signed draft between sessions. The
// store is a single-file bbolt database with one bucket mapping draft IDs to
// serialized transaction envelopes.
//
// A draft's ID is the message hash of its first spend. That value is fixed
// at assembly time and independent of signature state, so the ID is stable
// across the draft's whole life: saving after each new signature overwrites
// the same entry instead of accumulating stale copies.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/suffix-labs/multinote/pkg/note"
)

var bucketDrafts = []byte("drafts_by_id")

// Store is a bbolt-backed draft transaction store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDrafts)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DraftID derives the stable identifier of a transaction draft.
func DraftID(tx *note.Transaction) (string, error) {
	if len(tx.Spends) == 0 {
		return "", fmt.Errorf("transaction has no spends")
	}
	id := tx.Spends[0].Seeds.MessageHash
	if id == "" {
		return "", fmt.Errorf("transaction has no message hash; was it assembled?")
	}
	return id, nil
}

// Put saves a draft, overwriting any previous version of the same
// transaction, and returns its ID.
func (s *Store) Put(tx *note.Transaction) (string, error) {
	id, err := DraftID(tx)
	if err != nil {
		return "", err
	}
	data, err := note.Serialize(tx)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketDrafts).Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("put draft: %w", err)
	}
	return id, nil
}

// Get loads a draft by ID. Returns a nil transaction and no error when the
// ID is unknown.
func (s *Store) Get(id string) (*note.Transaction, error) {
	var data []byte
	err := s.db.View(func(btx *bolt.Tx) error {
		v := btx.Bucket(bucketDrafts).Get([]byte(id))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return note.Parse(data)
}

// List returns the IDs of all stored drafts in key order.
func (s *Store) List() ([]string, error) {
	var ids []string
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketDrafts).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return ids, nil
}

// Delete removes a draft. Deleting an unknown ID is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketDrafts).Delete([]byte(id))
	})
}
