package data

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.csv", `username,status,age
alice,active,25
bob,locked,30
charlie,active,35`)

	src, err := LoadFile(path, ModeSequential, "", nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if src.Len() != 3 {
		t.Errorf("Len() = %d, want 3", src.Len())
	}
	if got := src.Columns(); len(got) != 3 || got[0] != "username" || got[2] != "age" {
		t.Errorf("Columns() = %v, want file order", got)
	}

	for i, want := range []string{"alice", "bob", "charlie", "alice"} {
		if got := src.Next()["username"]; got != want {
			t.Errorf("row %d username = %v, want %s", i, got, want)
		}
	}
}

func TestReset(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hosts.csv", "host\nweb-1\nweb-2\n")

	src, err := LoadFile(path, ModeSequential, "", nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	src.Next()
	src.Reset()
	if got := src.Next()["host"]; got != "web-1" {
		t.Errorf("after Reset, Next() = %v, want web-1", got)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "products.json", `[
		{"id": 1, "name": "Widget", "price": 9.99},
		{"id": 2, "name": "Gadget", "price": 19.99}
	]`)

	src, err := LoadFile(path, ModeSequential, "", nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if src.Len() != 2 {
		t.Errorf("Len() = %d, want 2", src.Len())
	}
	if !src.HasColumn("price") || src.HasColumn("missing") {
		t.Errorf("HasColumn mismatch, columns = %v", src.Columns())
	}
	if got := strings.Join(src.Columns(), ","); got != "id,name,price" {
		t.Errorf("Columns() = %s, want file order id,name,price", got)
	}

	row := src.Next()
	if row["id"] != float64(1) {
		t.Errorf("row[id] = %v (%T), want 1", row["id"], row["id"])
	}
	if row["name"] != "Widget" {
		t.Errorf("row[name] = %v, want Widget", row["name"])
	}
}

func TestRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "col1\nvalue1")

	src, err := LoadFile("data.csv", ModeSequential, dir, nil)
	if err != nil {
		t.Fatalf("LoadFile with relative path: %v", err)
	}
	if src.Len() != 1 {
		t.Errorf("Len() = %d, want 1", src.Len())
	}
}

func TestModeRandomIsSeeded(t *testing.T) {
	path := writeFile(t, t.TempDir(), "random.csv", "value\na\nb\nc\nd\ne")

	draw := func() []any {
		src, err := LoadFile(path, ModeRandom, "", rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		out := make([]any, 20)
		for i := range out {
			out[i] = src.Next()["value"]
		}
		return out
	}

	first, second := draw(), draw()
	seen := make(map[any]bool)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d differs with the same seed: %v vs %v", i, first[i], second[i])
		}
		seen[first[i]] = true
	}
	if len(seen) < 2 {
		t.Errorf("random mode returned only %d unique values", len(seen))
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSequential, "sequential": ModeSequential, "random": ModeRandom} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("shuffle"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestEmptySource(t *testing.T) {
	src := NewSource(nil, nil, ModeSequential, nil)
	if src.Next() != nil {
		t.Error("Next() on empty source should return nil")
	}
}

func TestEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "header")

	if _, err := LoadFile(path, ModeSequential, "", nil); err == nil {
		t.Error("LoadFile should fail for CSV with no data rows")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.xml", "<data/>")

	if _, err := LoadFile(path, ModeSequential, "", nil); err == nil {
		t.Error("LoadFile should fail for unsupported format")
	}
}

func TestLoadJSON_RejectsNonObjects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"object.json":  `{"id": 1}`,
		"scalars.json": `[{"id": 1}, 2]`,
		"broken.json":  `[{"id": 1}`,
	} {
		path := writeFile(t, dir, name, body)
		if _, err := LoadFile(path, ModeSequential, "", nil); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
