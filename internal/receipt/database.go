package receipt

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	slotBucketName    = "slots"
	historyBucketName = "history"

	rawSlotKey     = "lastScanResult"
	overlaySlotKey = "modifiedItems"
	historyKey     = "recentReceipts"

	// historyLimit caps the history list; older entries are evicted
	// silently on insert.
	historyLimit = 10
)

// Store defines the persisted slots behind the receipt pipeline: the last
// raw extraction text, the user-edited overlay, and the bounded history.
type Store interface {
	// GetRaw returns the last extraction text, or false when no scan has
	// been stored yet.
	GetRaw() (string, bool, error)

	// SetRaw replaces the stored extraction text wholesale.
	SetRaw(text string) error

	// GetOverlay returns the user-edited item list, or false when the
	// ledger has not been edited since the last scan or reset.
	GetOverlay() ([]Item, bool, error)

	// SetOverlay replaces the edited item list wholesale.
	SetOverlay(items []Item) error

	// ClearOverlay removes the edited item list entirely.
	ClearOverlay() error

	// GetHistory returns past receipts, most recent first.
	GetHistory() ([]Receipt, error)

	// PrependToHistory inserts a receipt at the front of the history and
	// truncates to the most recent entries.
	PrependToHistory(r Receipt) error

	// RemoveFromHistory deletes the receipt with the given ID. Unknown IDs
	// are a no-op.
	RemoveFromHistory(id string) error

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements the Store interface using BoltDB
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(slotBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(historyBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// GetRaw returns the last extraction text
func (b *BoltStore) GetRaw() (string, bool, error) {
	var text string
	var present bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(slotBucketName)).Get([]byte(rawSlotKey))
		if data == nil {
			return nil
		}
		text = string(data)
		present = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("reading raw slot: %w", err)
	}
	return text, present, nil
}

// SetRaw replaces the stored extraction text
func (b *BoltStore) SetRaw(text string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(slotBucketName)).Put([]byte(rawSlotKey), []byte(text))
	})
}

// GetOverlay returns the user-edited item list
func (b *BoltStore) GetOverlay() ([]Item, bool, error) {
	var items []Item
	var present bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(slotBucketName)).Get([]byte(overlaySlotKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("unmarshaling overlay: %w", err)
		}
		present = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading overlay slot: %w", err)
	}
	return items, present, nil
}

// SetOverlay replaces the edited item list
func (b *BoltStore) SetOverlay(items []Item) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshaling overlay: %w", err)
		}
		return tx.Bucket([]byte(slotBucketName)).Put([]byte(overlaySlotKey), data)
	})
}

// ClearOverlay removes the edited item list
func (b *BoltStore) ClearOverlay() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(slotBucketName)).Delete([]byte(overlaySlotKey))
	})
}

// GetHistory returns past receipts, most recent first
func (b *BoltStore) GetHistory() ([]Receipt, error) {
	receipts := make([]Receipt, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(historyBucketName)).Get([]byte(historyKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &receipts); err != nil {
			return fmt.Errorf("unmarshaling history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return receipts, nil
}

// PrependToHistory inserts a receipt at the front of the history
func (b *BoltStore) PrependToHistory(r Receipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucketName))

		receipts := make([]Receipt, 0, historyLimit+1)
		if data := bucket.Get([]byte(historyKey)); data != nil {
			if err := json.Unmarshal(data, &receipts); err != nil {
				return fmt.Errorf("unmarshaling history: %w", err)
			}
		}

		receipts = append([]Receipt{r}, receipts...)
		if len(receipts) > historyLimit {
			receipts = receipts[:historyLimit]
		}

		data, err := json.Marshal(receipts)
		if err != nil {
			return fmt.Errorf("marshaling history: %w", err)
		}
		return bucket.Put([]byte(historyKey), data)
	})
}

// RemoveFromHistory deletes the receipt with the given ID
func (b *BoltStore) RemoveFromHistory(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucketName))

		data := bucket.Get([]byte(historyKey))
		if data == nil {
			return nil
		}

		var receipts []Receipt
		if err := json.Unmarshal(data, &receipts); err != nil {
			return fmt.Errorf("unmarshaling history: %w", err)
		}

		filtered := make([]Receipt, 0, len(receipts))
		for _, r := range receipts {
			if r.ID != id {
				filtered = append(filtered, r)
			}
		}

		out, err := json.Marshal(filtered)
		if err != nil {
			return fmt.Errorf("marshaling history: %w", err)
		}
		return bucket.Put([]byte(historyKey), out)
	})
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}
