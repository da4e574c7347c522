package station

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
stations:
  - id: 2
    name: Shanghai
  - id: 1
    name: Beijing
`

func TestParseAndResolve(t *testing.T) {
	d, err := Parse([]byte(sample), 100)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Len() != 2 || d.List()[0].Name != "Beijing" {
		t.Fatalf("List = %+v", d.List())
	}
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"beijing", 1, true},
		{" Shanghai ", 2, true},
		{"7", 7, true},
		{"Xian", 0, false},
	}
	for _, tt := range tests {
		id, ok := d.Resolve(tt.in)
		if ok != tt.ok || (ok && int(id) != tt.want) {
			t.Errorf("Resolve(%q) = %d, %v", tt.in, id, ok)
		}
	}
	if d.Name(2) != "Shanghai" || d.Name(9) != "9" {
		t.Fatalf("Name: %q %q", d.Name(2), d.Name(9))
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	bad := map[string]string{
		"out of range":   "stations:\n  - id: 500\n    name: Far\n",
		"duplicate id":   "stations:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n",
		"duplicate name": "stations:\n  - id: 1\n    name: A\n  - id: 2\n    name: a\n",
		"no name":        "stations:\n  - id: 1\n",
		"not yaml":       "stations: [",
	}
	for name, doc := range bad {
		if _, err := Parse([]byte(doc), 100); err == nil {
			t.Errorf("%s: Parse succeeded", name)
		}
	}
}

func TestLoad(t *testing.T) {
	d, err := Load("", 10)
	if err != nil || d.Len() != 0 {
		t.Fatalf("Load(\"\") = %v, %v", d, err)
	}
	if _, ok := d.Resolve("3"); !ok {
		t.Fatal("numeric id not resolved by empty directory")
	}
	path := filepath.Join(t.TempDir(), "stations.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	if d, err := Load(path, 10); err != nil || d.Len() != 2 {
		t.Fatalf("Load(file) = %v, %v", d, err)
	}
}
