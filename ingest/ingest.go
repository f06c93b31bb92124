//
// ingest.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package ingest loads sort input from JSON files. This is the
// boundary where rows are parsed; the sort core never looks inside a
// payload again.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// Ints reads a JSON array of integers.
func Ints(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("ingest: %s: %s", path, err)
	}
	return values, nil
}

// Records reads a JSON array of objects and extracts the named field
// as the sort key. The field may hold a JSON number or a string
// containing one; rows where it is missing or malformed get key 0.
// Each full row becomes the opaque payload.
func Records(path, field string) ([]element.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ingest: %s: %s", path, err)
	}

	rows := make([]element.Row, 0, len(raw))
	for _, r := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil {
			return nil, fmt.Errorf("ingest: %s: %s", path, err)
		}

		// The payload is the whole row, one line per record on emit.
		var row bytes.Buffer
		if err := json.Compact(&row, r); err != nil {
			return nil, fmt.Errorf("ingest: %s: %s", path, err)
		}
		rows = append(rows, element.Row{
			Key:  intField(obj, field),
			Data: row.Bytes(),
		})
	}
	return rows, nil
}

// intField extracts an integer field that may arrive as a number or
// as a numeric string.
func intField(obj map[string]json.RawMessage, field string) int {
	raw, ok := obj[field]
	if !ok {
		return 0
	}

	var num int
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if num, err := strconv.Atoi(str); err == nil {
			return num
		}
	}
	return 0
}
