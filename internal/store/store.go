// Package store provides the persistent collection store shared by the
// fault, listing and reservation workflows. Each named collection is kept
// as a single JSON-encoded array under a fixed key; an absent key reads as
// an empty collection, and so does a corrupted one.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Collection names. These are the only keys the store is used with.
const (
	CollectionListings     = "listings"
	CollectionPayments     = "payments"
	CollectionTransactions = "transactions"
	CollectionFaults       = "faults"
)

// Collections lists every known collection name.
var Collections = []string{
	CollectionListings,
	CollectionPayments,
	CollectionTransactions,
	CollectionFaults,
}

// Store is the collection store contract. Append is read-modify-write and is
// not atomic across concurrent callers: two interleaved appends to the same
// collection can lose an update (last write wins on the whole collection).
// The store is a best-effort cache, not a system of record.
type Store interface {
	// GetCollection returns the decoded collection, or an empty slice if the
	// collection has never been written. It never fails with a not-found error.
	GetCollection(ctx context.Context, name string) ([]json.RawMessage, error)

	// Append reads the current collection, appends record to the end and
	// writes the full collection back.
	Append(ctx context.Context, name string, record interface{}) error

	// ReplaceAll overwrites the collection with the given records. Used for
	// in-place updates, since the store only supports whole-collection writes.
	ReplaceAll(ctx context.Context, name string, records []json.RawMessage) error
}

// decodeCollection decodes a stored JSON array. Malformed data is treated as
// an empty collection rather than propagated: the store favours availability
// over strictness.
func decodeCollection(name string, data []byte) []json.RawMessage {
	if len(data) == 0 {
		return []json.RawMessage{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("store: discarding corrupted data for collection %q: %v", name, err)
		return []json.RawMessage{}
	}
	if records == nil {
		return []json.RawMessage{}
	}
	return records
}

// encodeCollection encodes records as a JSON array. A nil slice encodes as [].
func encodeCollection(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

// appendRecord implements the shared read-modify-write append over the raw
// byte representation of a collection.
func appendRecord(name string, current []byte, record interface{}) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record for collection %q: %w", name, err)
	}
	records := append(decodeCollection(name, current), json.RawMessage(raw))
	return encodeCollection(records)
}
