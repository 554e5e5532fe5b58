package dispatch

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketDispatches = []byte("dispatches") // ID (big-endian) -> Record JSON

// boltHistory implements HistoryStore using BoltDB.
type boltHistory struct {
	db *bolt.DB
	mu sync.RWMutex
}

// NewBoltHistory opens (creating if needed) a BoltDB-backed history store
// at path.
//
// Parent directories are created automatically. The open uses a short
// timeout so a concurrent marker-watch instance holding the file lock
// fails fast instead of hanging.
func NewBoltHistory(path string) (HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketDispatches)
		return createErr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create dispatches bucket: %w", err)
	}

	return &boltHistory{db: db}, nil
}

// Put implements HistoryStore.Put.
func (s *boltHistory) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrHistoryClosed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDispatches).Put(historyKey(rec.ID), data)
	})
}

// Recent implements HistoryStore.Recent.
func (s *boltHistory) Recent(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrHistoryClosed
	}

	var records []Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDispatches).Cursor()

		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec Record
			if unmarshalErr := json.Unmarshal(v, &rec); unmarshalErr != nil {
				return fmt.Errorf("failed to unmarshal record: %w", unmarshalErr)
			}
			records = append(records, rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Close implements HistoryStore.Close.
func (s *boltHistory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	db := s.db
	s.db = nil

	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}

	return nil
}

// historyKey encodes an ID as a sortable big-endian key.
func historyKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// noopHistory discards all records. Used when persistence is disabled or
// the store could not be opened.
type noopHistory struct{}

// NewNoopHistory returns a HistoryStore that keeps nothing.
func NewNoopHistory() HistoryStore {
	return noopHistory{}
}

func (noopHistory) Put(Record) error { return nil }

func (noopHistory) Recent(int) ([]Record, error) { return nil, nil }

func (noopHistory) Close() error { return nil }
