// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auditstore

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/eirikstad/tableau/tableau"
)

func sampleItemset(t *testing.T) *tableau.MemLexRepr {
	t.Helper()
	e, err := tableau.NewEvent(0, "a", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	m, err := tableau.NewSingletonMemLexRepr(e, 1)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestOpenRejectsExistingPath(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir); err == nil {
		t.Fatal("Open() on an already-populated directory should fail")
	}
}

func TestInsertAndDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	itemset := sampleItemset(t)
	if err := store.Insert(itemset, 0.75, true); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(itemset, 0.1, false); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Reopen(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	var buf bytes.Buffer
	if err := reopened.DumpTable(FrequentTable, &buf); err != nil {
		t.Fatal(err)
	}
	var got record
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("decoding frequent dump: %v (%s)", err, buf.String())
	}
	if got.Support != 0.75 || !got.Frequent {
		t.Fatalf("frequent dump = %+v, want support 0.75, frequent true", got)
	}

	buf.Reset()
	if err := reopened.DumpTable(UnfrequentTable, &buf); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("decoding unfrequent dump: %v (%s)", err, buf.String())
	}
	if got.Support != 0.1 || got.Frequent {
		t.Fatalf("unfrequent dump = %+v, want support 0.1, frequent false", got)
	}
}
