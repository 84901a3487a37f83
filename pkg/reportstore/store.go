package reportstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	reportsBucket = []byte("reports")
	indexBucket   = []byte("by_time")

	ErrNotFound = errors.New("report not found")
)

// Entry identifies one archived report.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store archives finished judge runs in a BoltDB file, keyed by run ID.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{reportsBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores v as JSON under id. Saving the same id again replaces it.
func (s *Store) Save(id string, createdAt time.Time, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(reportsBucket).Put([]byte(id), data); err != nil {
			return err
		}
		return tx.Bucket(indexBucket).Put(indexKey(createdAt, id), []byte(id))
	})
}

// Load decodes the report stored under id into v.
func (s *Store) Load(id string, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(reportsBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, v)
	})
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(indexBucket).Cursor()
		seen := make(map[string]struct{})
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			id := string(v)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			ts, err := time.Parse(time.RFC3339Nano, string(k[:len(k)-len(v)-1]))
			if err != nil {
				return fmt.Errorf("corrupt index key %q: %w", k, err)
			}
			entries = append(entries, Entry{ID: id, CreatedAt: ts})
			if limit > 0 && len(entries) == limit {
				break
			}
		}
		return nil
	})
	return entries, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// indexKey sorts lexically by time: a fixed-width UTC timestamp, then the id.
func indexKey(t time.Time, id string) []byte {
	return []byte(t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00") + "|" + id)
}
