// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a fixed-capacity least-recently-used cache of
translation values and a read-through [Store] that puts one in front of any
[translation.Store].

When compression is enabled, values are stored zstd-compressed whenever that
makes them smaller, and are decompressed transparently on lookup.
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is safe for concurrent use. Construct it with [New].
type Cache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	lock      sync.Mutex
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

type entry struct {
	key        string
	value      []byte
	compressed bool
	// missing records a cached "no value stored" answer.
	missing bool
}

// New creates a cache holding at most size values.
func New(size int, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}

	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.enc = enc
		c.dec = dec
	}

	return c, nil
}

// Add stores value for key and reports whether an older entry was evicted.
func (c *Cache) Add(key, value string) bool {
	stored, compressed := c.encode(value)

	return c.put(&entry{key: key, value: stored, compressed: compressed})
}

// AddMissing records that key has no value.
func (c *Cache) AddMissing(key string) bool {
	return c.put(&entry{key: key, missing: true})
}

func (c *Cache) put(e *entry) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.items[e.key]; ok {
		el.Value = e
		c.evictList.MoveToFront(el)

		return false
	}

	c.items[e.key] = c.evictList.PushFront(e)

	if c.evictList.Len() <= c.size {
		return false
	}

	oldest := c.evictList.Back()
	c.evictList.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key)

	return true
}

// Get returns the value for key and marks it as most recently used.
//
// found reports whether key is cached at all; missing reports a cached
// "no value stored" answer.
func (c *Cache) Get(key string) (value string, missing, found bool) {
	c.lock.Lock()

	el, ok := c.items[key]
	if !ok {
		c.lock.Unlock()

		return "", false, false
	}

	c.evictList.MoveToFront(el)
	e := el.Value.(*entry)
	c.lock.Unlock()

	if e.missing {
		return "", true, true
	}

	value, ok = c.decode(e)
	if !ok {
		c.Remove(key)

		return "", false, false
	}

	return value, false, true
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}

	c.evictList.Remove(el)
	delete(c.items, key)

	return true
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	clear(c.items)
}

// Keys returns the cached keys from the oldest to the newest.
func (c *Cache) Keys() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]string, 0, len(c.items))
	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		keys = append(keys, el.Value.(*entry).key)
	}

	return keys
}

func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}

// encode runs without the lock; zstd.Encoder.EncodeAll is safe for concurrent use.
func (c *Cache) encode(value string) ([]byte, bool) {
	raw := []byte(value)
	if c.enc == nil || len(raw) == 0 {
		return raw, false
	}

	packed := c.enc.EncodeAll(raw, nil)
	if len(packed) < len(raw) {
		return packed, true
	}

	return raw, false
}

func (c *Cache) decode(e *entry) (string, bool) {
	if !e.compressed {
		return string(e.value), true
	}

	if c.dec == nil {
		return "", false
	}

	raw, err := c.dec.DecodeAll(e.value, nil)
	if err != nil {
		return "", false
	}

	return string(raw), true
}
