//
// main.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Command bitonic sorts a JSON array of integers with the standalone
// bitonic network and writes one value per line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/bitonic"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/ingest"
)

func main() {
	fInput := flag.String("f", "ints.json", "input JSON file")
	fOutput := flag.String("o", "sorted_output_bitonic.json", "output file")
	flag.Parse()

	values, err := ingest.Ints(*fInput)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d integers from %s.\n", len(values), *fInput)

	elems := make([]element.Element, 0, len(values))
	for _, v := range values {
		elems = append(elems, element.Element{
			SortKey: v,
			Payload: []byte(strconv.Itoa(v)),
		})
	}
	padded := 1
	for padded < len(elems) {
		padded *= 2
	}
	for len(elems) < padded {
		elems = append(elems, element.NewDummy())
	}
	fmt.Printf("Padded sequence length: %d\n", len(elems))

	err = bitonic.Sort(elems, bitonic.BySortKeyDummiesLast, true)
	if err != nil {
		log.Fatal(err)
	}

	var out []element.Element
	for _, el := range elems {
		if !el.Dummy {
			out = append(out, el)
		}
	}

	sorted := true
	for i := 1; i < len(out); i++ {
		if out[i].SortKey < out[i-1].SortKey {
			sorted = false
			break
		}
	}
	fmt.Printf("Final elements sorted by value? %v\n", sorted)

	f, err := os.Create(*fOutput)
	if err != nil {
		log.Fatal(err)
	}
	w := bufio.NewWriter(f)
	for _, el := range out {
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
