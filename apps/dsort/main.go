//
// main.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Command dsort partitions a JSON array of integers across N shard
// enclaves, sorts locally in parallel, and merges the shards with
// bitonic merge rounds into one globally sorted output.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/config"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/dbitonic"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/ingest"
)

func main() {
	fConfig := flag.String("c", "", "configuration file")
	fInput := flag.String("f", "ints.json", "input JSON file")
	fOutput := flag.String("o", "sorted_output_distributed_bitonic.json",
		"output file")
	fShards := flag.Int("shards", 0, "shard count (power of two)")
	fZ := flag.Int("z", 0, "oblivious local sort with this bucket capacity")
	fVerbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	shards := 4
	if len(*fConfig) > 0 {
		cfg, err := config.Load(*fConfig)
		if err != nil {
			log.Fatal(err)
		}
		shards = cfg.Shards
	}
	if *fShards > 0 {
		shards = *fShards
	}

	values, err := ingest.Ints(*fInput)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d integers from %s.\n", len(values), *fInput)

	rows := make([]element.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, element.Row{
			Key:  v,
			Data: []byte(strconv.Itoa(v)),
		})
	}

	var sorter *dbitonic.Sorter
	if *fZ > 0 {
		sorter, err = dbitonic.NewOblivious(rows, shards, *fZ)
	} else {
		sorter, err = dbitonic.New(rows, shards)
	}
	if err != nil {
		log.Fatal(err)
	}
	sorter.Verbose = *fVerbose

	if err := sorter.Sort(); err != nil {
		log.Fatal(err)
	}
	result := sorter.Result()

	sorted := true
	for i := 1; i < len(result); i++ {
		if result[i].SortKey < result[i-1].SortKey {
			sorted = false
			break
		}
	}
	fmt.Printf("Global sorted order verified? %v\n", sorted)
	fmt.Printf("Total global sorted rows: %d\n", len(result))

	f, err := os.Create(*fOutput)
	if err != nil {
		log.Fatal(err)
	}
	w := bufio.NewWriter(f)
	for _, el := range result {
		w.Write(el.Payload)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s\n", *fOutput)
}
