// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package cache stores probe results in a local pebble database. Entries are
// keyed by the BLAKE3 digest of the probed input combined with the settings
// that influence the result, so probing the same input twice with the same
// settings can reuse the first result.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
	"github.com/segmentio/ksuid"
	"github.com/zeebo/blake3"
)

// ErrNotFound is returned by [Cache.Get] if no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// keyPrefix separates probe entries from other data in the database
const keyPrefix = "probe/"

// Record is the metadata stored with every cached value.
type Record struct {
	// RunID identifies the run that stored the entry.
	RunID ksuid.KSUID

	// Created is the time the entry was stored.
	Created time.Time
}

// entry is the stored form of a cached value
type entry struct {
	RunID   string          `cbor:"run_id"`
	Created int64           `cbor:"created"`
	Payload cbor.RawMessage `cbor:"payload"`
}

// Cache is a persistent key value cache for probe results.
type Cache struct {
	db *pebble.DB
}

// Open opens the cache database in dir and creates it if it does not exist.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("cannot open cache %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Key derives a cache key from the input and the settings that produced a
// result. Settings are order sensitive.
func Key(input []byte, settings ...string) []byte {
	digest := blake3.Sum256(input)
	return []byte(keyPrefix + hex.EncodeToString(digest[:]) + "/" + strings.Join(settings, ","))
}

// Put stores v cbor encoded under key and returns the run id of the new
// entry. An existing entry is replaced.
func (c *Cache) Put(key []byte, v any) (ksuid.KSUID, error) {
	payload, err := cbor.Marshal(v)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("cannot encode cache entry: %w", err)
	}

	id := ksuid.New()
	data, err := cbor.Marshal(entry{
		RunID:   id.String(),
		Created: id.Time().UnixNano(),
		Payload: payload,
	})
	if err != nil {
		return ksuid.Nil, fmt.Errorf("cannot encode cache entry: %w", err)
	}

	if err := c.db.Set(key, data, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("cannot store cache entry: %w", err)
	}
	return id, nil
}

// Get decodes the entry stored under key into v. It returns [ErrNotFound]
// if there is no such entry.
func (c *Cache) Get(key []byte, v any) (Record, error) {
	data, closer, err := c.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("cannot read cache entry: %w", err)
	}
	defer closer.Close()

	// data is only valid until closer is closed, decoding copies everything
	var e entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return Record{}, fmt.Errorf("corrupt cache entry: %w", err)
	}
	id, err := ksuid.Parse(e.RunID)
	if err != nil {
		return Record{}, fmt.Errorf("corrupt cache entry: %w", err)
	}
	if err := cbor.Unmarshal(e.Payload, v); err != nil {
		return Record{}, fmt.Errorf("cannot decode cache entry: %w", err)
	}
	return Record{RunID: id, Created: time.Unix(0, e.Created).UTC()}, nil
}

// Delete removes the entry stored under key. Deleting a missing entry is not
// an error.
func (c *Cache) Delete(key []byte) error {
	return c.db.Delete(key, pebble.Sync)
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
