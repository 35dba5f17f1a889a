package store

import (
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func metaKey(name string) []byte {
	return []byte(joinKey("m", name))
}

// SetMarker writes a marker that expires on its own after ttl, so a crashed
// writer never leaves it behind for good.
func (tx *Tx) SetMarker(name string, ttl time.Duration) error {
	if !tx.writable {
		return errors.New("write in read-only transaction")
	}
	return tx.txn.SetEntry(badger.NewEntry(metaKey(name), []byte{1}).WithTTL(ttl))
}

// Marker reports whether an unexpired marker exists.
func (tx *Tx) Marker(name string) (bool, error) {
	_, err := tx.get(metaKey(name))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ClearMarker removes a marker.
func (tx *Tx) ClearMarker(name string) error {
	return tx.del(metaKey(name))
}

// SetTime stores t under name.
func (tx *Tx) SetTime(name string, t time.Time) error {
	return tx.set(metaKey(name), []byte(strconv.FormatInt(t.UnixNano(), 10)))
}

// Time reads a time stored with SetTime.
func (tx *Tx) Time(name string) (time.Time, bool, error) {
	raw, err := tx.get(metaKey(name))
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(0, n), true, nil
}
