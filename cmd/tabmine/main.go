// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tabmine is a demonstration tool for the tableau Apriori engine. It reads a
// JSON array of per-timeline interval records, mines frequent
// interval-itemsets at a given support threshold, and prints a JSON summary
// of how many itemsets were found at each size.
//
// usage: tabmine -input records.json -epsilon 0.5 [-audit ./audit]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eirikstad/tableau/internal/auditstore"
	"github.com/eirikstad/tableau/preprocess"
	"github.com/eirikstad/tableau/tableau"
)

func main() {
	input := flag.String("input", "", "specify JSON file of per-timeline interval records (required)")
	epsilon := flag.Float64("epsilon", 0.5, "specify minimum support threshold")
	auditDir := flag.String("audit", "", "specify directory to write frequent.db/unfrequent.db audit trail")
	saveAll := flag.Bool("audit-all", false, "specify to also audit itemsets that miss the support threshold")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -input records.json -epsilon 0.5 [-audit ./audit]

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatal(err)
	}
	var records []map[int][]preprocess.Interval
	err = json.NewDecoder(f).Decode(&records)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}

	dataset, err := preprocess.Dataset(records)
	if err != nil {
		log.Fatal(err)
	}

	var opts []tableau.EngineOption
	var sink *auditstore.Store
	if *auditDir != "" {
		if err := os.MkdirAll(*auditDir, 0o755); err != nil {
			log.Fatal(err)
		}
		sink, err = auditstore.Open(*auditDir)
		if err != nil {
			log.Fatal(err)
		}
		defer sink.Close()
		opts = append(opts, tableau.WithAuditSink(sink, *saveAll))
	}

	engine, err := tableau.NewEngine(dataset, *epsilon, opts...)
	if err != nil {
		log.Fatal(err)
	}

	frequent, err := engine.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	summary := make(map[int]int, len(frequent))
	for size, itemsets := range frequent {
		summary[size] = len(itemsets)
	}
	if err := json.NewEncoder(os.Stdout).Encode(summary); err != nil {
		log.Fatal(err)
	}
}
