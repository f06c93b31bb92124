//
// main.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Command osort sorts a JSON array of records by a numeric field with
// the oblivious bucket sort and writes the payloads one per line in
// key order.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/cipher"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/config"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/enclave"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/ingest"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/store"
)

func main() {
	fConfig := flag.String("c", "", "configuration file")
	fInput := flag.String("f", "", "input JSON file")
	fOutput := flag.String("o", "", "output file")
	fField := flag.String("k", "", "sort key field name")
	fZ := flag.Int("z", 0, "bucket capacity")
	fCipher := flag.String("cipher", "", "bucket cipher (mask, aead)")
	fTrace := flag.Int("trace", 10, "access log entries to print")
	fVerbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	cfg := config.Default()
	if len(*fConfig) > 0 {
		var err error
		cfg, err = config.Load(*fConfig)
		if err != nil {
			log.Fatal(err)
		}
	}
	if len(*fInput) > 0 {
		cfg.Input = *fInput
	}
	if len(*fOutput) > 0 {
		cfg.Output = *fOutput
	}
	if len(*fField) > 0 {
		cfg.KeyField = *fField
	}
	if *fZ > 0 {
		cfg.BucketSize = *fZ
	}
	if len(*fCipher) > 0 {
		cfg.Cipher = *fCipher
	}

	rows, err := ingest.Records(cfg.Input, cfg.KeyField)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d rows from %s.\n", len(rows), cfg.Input)

	ciph, err := newCipher(cfg.Cipher)
	if err != nil {
		log.Fatal(err)
	}

	mem := store.NewMemory()
	enc, err := enclave.New(mem, ciph)
	if err != nil {
		log.Fatal(err)
	}
	enc.Verbose = *fVerbose

	fmt.Printf("Starting oblivious sort... (Z=%d)\n", cfg.BucketSize)
	sorted, err := enc.Sort(rows, cfg.BucketSize)
	if err != nil {
		if errors.Is(err, enclave.ErrOverflow) {
			log.Fatalf("%s (retry with a larger bucket size)", err)
		}
		log.Fatal(err)
	}
	fmt.Printf("Sort complete. Number of sorted rows: %d\n", len(sorted))

	f, err := os.Create(cfg.Output)
	if err != nil {
		log.Fatal(err)
	}
	w := bufio.NewWriter(f)
	for _, row := range sorted {
		w.Write(row)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote sorted rows to %s\n", cfg.Output)

	if *fTrace > 0 {
		accesses := mem.Accesses()
		fmt.Printf("\nAccess Log (first %d of %d entries):\n",
			*fTrace, len(accesses))
		for i, a := range accesses {
			if i >= *fTrace {
				break
			}
			fmt.Println(a)
		}
	}

	fmt.Println()
	enc.Timing().Print(mem.Stats())
}

func newCipher(name string) (cipher.Cipher, error) {
	switch name {
	case "mask":
		return cipher.Mask{}, nil
	case "aead":
		key, err := cipher.NewKey()
		if err != nil {
			return nil, err
		}
		return cipher.NewAEAD(key)
	default:
		return nil, fmt.Errorf("unknown cipher '%s'", name)
	}
}
