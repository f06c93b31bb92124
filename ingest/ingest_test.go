//
// ingest_test.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInts(t *testing.T) {
	path := writeFile(t, `[3, 1, 4, 1, 5]`)

	values, err := Ints(path)
	if err != nil {
		t.Fatalf("Ints: %s", err)
	}
	want := []int{3, 1, 4, 1, 5}
	if len(values) != len(want) {
		t.Fatalf("%d values, expected %d", len(values), len(want))
	}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("value %d: %d, expected %d", i, values[i], w)
		}
	}
}

func TestIntsEmpty(t *testing.T) {
	path := writeFile(t, `[]`)
	values, err := Ints(path)
	if err != nil {
		t.Fatalf("Ints: %s", err)
	}
	if len(values) != 0 {
		t.Fatalf("%d values, expected 0", len(values))
	}
}

func TestIntsMalformed(t *testing.T) {
	path := writeFile(t, `{"not": "an array"}`)
	if _, err := Ints(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIntsMissingFile(t *testing.T) {
	if _, err := Ints(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected file error")
	}
}

func TestRecords(t *testing.T) {
	path := writeFile(t, `[
		{"name": "a", "subscriberCount": 10},
		{"name": "b", "subscriberCount": "250"},
		{"name": "c"},
		{"name": "d", "subscriberCount": "many"}
	]`)

	rows, err := Records(path, "subscriberCount")
	if err != nil {
		t.Fatalf("Records: %s", err)
	}
	if len(rows) != 4 {
		t.Fatalf("%d rows, expected 4", len(rows))
	}

	// Number, numeric string, missing field, malformed string.
	want := []int{10, 250, 0, 0}
	for i, w := range want {
		if rows[i].Key != w {
			t.Errorf("row %d: key %d, expected %d", i, rows[i].Key, w)
		}
	}

	// The payload is the whole row.
	if !strings.Contains(string(rows[1].Data), `"name"`) {
		t.Errorf("payload lost the row: %s", rows[1].Data)
	}
	if !strings.Contains(string(rows[1].Data), `"250"`) {
		t.Errorf("payload lost the key field: %s", rows[1].Data)
	}
}

func TestRecordsMalformed(t *testing.T) {
	path := writeFile(t, `[1, 2, 3]`)
	if _, err := Records(path, "k"); err == nil {
		t.Fatal("expected parse error")
	}
}
