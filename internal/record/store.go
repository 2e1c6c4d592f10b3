// Package record is the durable store for validated transport requests.
//
// Records live in a bbolt database: one JSON document per request keyed by
// request id, plus a sequence bucket that preserves insertion order for the
// list path. Every append is a single fsynced transaction, so concurrent
// submissions serialize on the store and a crash never leaves a
// half-written record visible.
package record

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when an append would overwrite an
	// existing request id. Ids are never reused, so this indicates an
	// internal consistency failure, not a storage fault.
	ErrDuplicateID = errors.New("duplicate request id")
)

// Bucket names.
const (
	bucketRequests = "requests"
	bucketSequence = "request_seq"
)

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store at path and initializes buckets. A
// missing file is an empty store, not an error.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{bucketRequests, bucketSequence} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one request. The write is atomic: either both the
// document and its sequence entry are durable or neither is.
func (s *Store) Append(req *models.Request) error {
	if req.RequestID == "" {
		return fmt.Errorf("request has no id")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		requests := tx.Bucket([]byte(bucketRequests))
		if requests.Get([]byte(req.RequestID)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, req.RequestID)
		}

		if err := requests.Put([]byte(req.RequestID), data); err != nil {
			return fmt.Errorf("failed to store request: %w", err)
		}

		seq := tx.Bucket([]byte(bucketSequence))
		n, err := seq.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to advance sequence: %w", err)
		}
		if err := seq.Put(itob(int64(n)), []byte(req.RequestID)); err != nil {
			return fmt.Errorf("failed to store sequence entry: %w", err)
		}
		return nil
	})
}

// Delete removes a request and its sequence entry. It exists solely for
// compensating cleanup of an append that completed after its attempt was
// already reported failed; successfully submitted records are never
// deleted.
func (s *Store) Delete(requestID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		requests := tx.Bucket([]byte(bucketRequests))
		if requests.Get([]byte(requestID)) == nil {
			return ErrNotFound
		}
		if err := requests.Delete([]byte(requestID)); err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}

		seq := tx.Bucket([]byte(bucketSequence))
		c := seq.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if string(v) == requestID {
				return seq.Delete(k)
			}
		}
		return nil
	})
}

// Get retrieves a request by id.
func (s *Store) Get(requestID string) (*models.Request, error) {
	var req models.Request
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketRequests)).Get([]byte(requestID))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListAll returns every stored request in insertion order. An empty store
// yields an empty slice.
func (s *Store) ListAll() ([]*models.Request, error) {
	var requests []*models.Request

	err := s.db.View(func(tx *bolt.Tx) error {
		docs := tx.Bucket([]byte(bucketRequests))
		return tx.Bucket([]byte(bucketSequence)).ForEach(func(k, id []byte) error {
			data := docs.Get(id)
			if data == nil {
				return fmt.Errorf("sequence entry %s points at missing record", id)
			}
			var req models.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to unmarshal record %s: %w", id, err)
			}
			requests = append(requests, &req)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// Count returns the number of stored requests.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketRequests)).Stats().KeyN
		return nil
	})
	return n, err
}

// itob converts an int64 to a byte slice for use as a bbolt key. Big-endian
// keys keep sequence iteration in insertion order.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
