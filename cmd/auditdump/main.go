// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The auditdump command allows the audit databases written by tabmine's
// -audit flag to be inspected. Each run leaves two modernc.org/kv databases
// in the audit directory:
//  - frequent.db   — itemsets that cleared the support threshold
//  - unfrequent.db — itemsets that did not (always created, only
//    populated with -audit-all)
// Output is a stream of newline-delimited JSON objects on stdout.
//
// usage: auditdump -db ./audit -table frequent
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eirikstad/tableau/internal/auditstore"
)

func main() {
	dir := flag.String("db", "", "specify audit directory written by tabmine -audit (required)")
	table := flag.String("table", "frequent", "specify table to dump: frequent or unfrequent")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -db ./audit -table frequent

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	var t auditstore.Table
	switch *table {
	case "frequent":
		t = auditstore.FrequentTable
	case "unfrequent":
		t = auditstore.UnfrequentTable
	default:
		flag.Usage()
		os.Exit(2)
	}

	store, err := auditstore.Reopen(*dir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := store.DumpTable(t, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
