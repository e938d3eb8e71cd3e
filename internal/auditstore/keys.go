// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auditstore persists every itemset an Engine measures to a pair of
// ordered key-value databases on disk, so a run's full audit trail survives
// the process.
package auditstore

import (
	"bytes"
	"encoding/binary"

	"github.com/eirikstad/tableau/tableau"
)

// Table identifies which of the two kv databases an itemset belongs in.
type Table int

const (
	FrequentTable Table = iota
	UnfrequentTable
)

var order = binary.BigEndian

// encodeKey builds the (itemset-serialization, timestamp) idempotency key: a
// length-prefixed copy of itemset's searchable string followed by a
// big-endian nanosecond timestamp, the same technique
// MarshalBlastRecordKey uses to make a BLAST record's fields sort and
// compare as a single byte string.
func encodeKey(itemset *tableau.MemLexRepr, atNanos int64) []byte {
	s := itemset.AsSearchableString()
	var buf bytes.Buffer
	var b [8]byte
	order.PutUint64(b[:], uint64(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
	order.PutUint64(b[:], uint64(atNanos))
	buf.Write(b[:])
	return buf.Bytes()
}

// byKeyOrder is the kv compare function for both tables: plain byte order
// over the encoded key, which already groups entries by itemset and then
// by insertion time.
func byKeyOrder(x, y []byte) int {
	return bytes.Compare(x, y)
}
