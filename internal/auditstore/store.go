// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auditstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"modernc.org/kv"

	"github.com/eirikstad/tableau/tableau"
)

// record is the JSON value stored alongside each key.
type record struct {
	Data     [][]string `json:"data"`
	Support  float64    `json:"support"`
	Frequent bool       `json:"frequent"`
}

// Store implements tableau.AuditSink over two modernc.org/kv databases,
// frequent.db and unfrequent.db, opened under a single directory.
type Store struct {
	frequent   *kv.DB
	unfrequent *kv.DB
}

// Open creates frequent.db and unfrequent.db under dir, creating dir first
// if it does not exist. kv.Create fails if either file path already
// exists, so a Store can never silently append to a stale audit trail from
// an earlier run.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("auditstore: create %s: %w", dir, err)
	}
	opts := &kv.Options{Compare: byKeyOrder}
	freq, err := kv.Create(filepath.Join(dir, "frequent.db"), opts)
	if err != nil {
		return nil, fmt.Errorf("auditstore: create frequent.db: %w", err)
	}
	unfreq, err := kv.Create(filepath.Join(dir, "unfrequent.db"), opts)
	if err != nil {
		freq.Close()
		return nil, fmt.Errorf("auditstore: create unfrequent.db: %w", err)
	}
	return &Store{frequent: freq, unfrequent: unfreq}, nil
}

// Reopen opens an existing audit directory written by Open, for read-only
// inspection (auditdump).
func Reopen(dir string) (*Store, error) {
	opts := &kv.Options{Compare: byKeyOrder}
	freq, err := kv.Open(filepath.Join(dir, "frequent.db"), opts)
	if err != nil {
		return nil, fmt.Errorf("auditstore: open frequent.db: %w", err)
	}
	unfreq, err := kv.Open(filepath.Join(dir, "unfrequent.db"), opts)
	if err != nil {
		freq.Close()
		return nil, fmt.Errorf("auditstore: open unfrequent.db: %w", err)
	}
	return &Store{frequent: freq, unfrequent: unfreq}, nil
}

// Insert implements tableau.AuditSink.
func (s *Store) Insert(itemset *tableau.MemLexRepr, support float64, frequent bool) error {
	db := s.unfrequent
	if frequent {
		db = s.frequent
	}
	key := encodeKey(itemset, time.Now().UnixNano())
	val, err := json.Marshal(record{Data: itemset.Data, Support: support, Frequent: frequent})
	if err != nil {
		return fmt.Errorf("auditstore: marshal %s: %w", itemset.Key(), err)
	}
	if err := db.Set(key, val); err != nil {
		return fmt.Errorf("auditstore: set %s: %w", itemset.Key(), err)
	}
	return nil
}

// Close closes both underlying databases, returning the first error
// encountered.
func (s *Store) Close() error {
	err1 := s.frequent.Close()
	err2 := s.unfrequent.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// DumpTable writes every record in t to w as a stream of newline-delimited
// JSON objects, in key order.
func (s *Store) DumpTable(t Table, w io.Writer) error {
	db := s.unfrequent
	if t == FrequentTable {
		db = s.frequent
	}
	enc := json.NewEncoder(w)
	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		_, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		var r record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
}
